package bplus

import "SlotDB/types"

// compare orders two wire-format keys of the tree's attribute type.
func (t *BPlusTree) compare(a, b []byte) int {
	return types.CompareValues(t.attrType, a, b)
}

// lowerBound returns the first index whose key is >= target.
func lowerBound(keys [][]byte, target []byte, cmp func(a, b []byte) int) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(keys[mid], target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBound returns the first index whose key is > target.
func upperBound(keys [][]byte, target []byte, cmp func(a, b []byte) int) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(keys[mid], target) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// insert inserts elem at index i in slice.
func insert[T any](slice []T, i int, elem T) []T {
	slice = append(slice, elem) // grow by 1
	copy(slice[i+1:], slice[i:])
	slice[i] = elem
	return slice
}

// remove removes element at index i from slice.
func remove[T any](slice []T, i int) []T {
	return append(slice[:i], slice[i+1:]...)
}

// byteMedian picks the split point of a run of entries so that the bytes
// before it are at least half the total. The result is in [lo, hi].
func byteMedian(keys [][]byte, es, lo, hi int) int {
	total := 0
	for _, k := range keys {
		total += es + len(k)
	}
	acc := 0
	for i, k := range keys {
		acc += es + len(k)
		if 2*acc >= total {
			return min(max(i+1, lo), hi)
		}
	}
	return hi
}
