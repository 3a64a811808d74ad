package bplus

import (
	"SlotDB/types"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PrintBTree writes the tree in pre-order as JSON. Internal nodes render as
// {"keys":[...],"children":[...]}; leaves group equal keys as
// "key:[(page,slot),...]".
func (t *BPlusTree) PrintBTree(w io.Writer) error {
	if t.isEmpty() {
		_, err := fmt.Fprintln(w, `{"keys":[]}`)
		return err
	}
	if err := t.printNode(w, rootPage, 0); err != nil {
		return errors.Wrap(err, "PrintBTree")
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (t *BPlusTree) printNode(w io.Writer, pageNum types.PageNum, depth int) error {
	if depth > int(t.fh.NumberOfPages()) {
		return errors.Wrapf(ErrCorruptNode, "page %d nested deeper than the file is long", pageNum)
	}
	node, err := t.readNode(pageNum)
	if err != nil {
		return err
	}
	indent := strings.Repeat("    ", depth)

	if node.isLeaf {
		_, err := fmt.Fprintf(w, "%s{\"keys\":[%s]}", indent, strings.Join(t.leafGroups(node), ","))
		return err
	}

	keys := make([]string, len(node.keys))
	for i, k := range node.keys {
		keys[i] = strconv.Quote(types.FormatValue(t.attrType, k))
	}
	if _, err := fmt.Fprintf(w, "%s{\"keys\":[%s],\n%s\"children\":[\n", indent, strings.Join(keys, ","), indent); err != nil {
		return err
	}
	for i, child := range node.children {
		if err := t.printNode(w, child, depth+1); err != nil {
			return err
		}
		sep := ",\n"
		if i == len(node.children)-1 {
			sep = "\n"
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "%s]}", indent)
	return err
}

// leafGroups renders runs of equal keys as quoted "key:[(p,s),...]".
func (t *BPlusTree) leafGroups(node *Node) []string {
	var groups []string
	for i := 0; i < len(node.keys); {
		j := i
		var rids []string
		for ; j < len(node.keys) && t.compare(node.keys[j], node.keys[i]) == 0; j++ {
			rids = append(rids, fmt.Sprintf("(%d,%d)", node.rids[j].PageNum, node.rids[j].SlotNum))
		}
		entry := types.FormatValue(t.attrType, node.keys[i]) + ":[" + strings.Join(rids, ",") + "]"
		groups = append(groups, strconv.Quote(entry))
		i = j
	}
	return groups
}
