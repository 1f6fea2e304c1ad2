package render

import (
	"io"
	"sort"
	"strings"

	"github.com/xlab/treeprint"
)

// Tree writes the entry names as a tree rooted at rootLabel.
// Names use forward slashes; directories sort before entries at each level.
func Tree(w io.Writer, rootLabel string, names []string) error {
	_, err := io.WriteString(w, BuildTree(rootLabel, names).String())
	return err
}

// BuildTree returns the tree of entry names without writing it.
func BuildTree(rootLabel string, names []string) treeprint.Tree {
	root := &dirNode{children: map[string]*dirNode{}}
	for _, name := range names {
		root.insert(strings.Split(strings.Trim(name, "/"), "/"))
	}

	tree := treeprint.NewWithRoot(rootLabel)
	root.addTo(tree)
	return tree
}

type dirNode struct {
	children map[string]*dirNode
	entry    bool
}

func (d *dirNode) insert(parts []string) {
	if len(parts) == 0 || parts[0] == "" {
		return
	}

	child, ok := d.children[parts[0]]
	if !ok {
		child = &dirNode{children: map[string]*dirNode{}}
		d.children[parts[0]] = child
	}

	if len(parts) == 1 {
		child.entry = true
		return
	}
	child.insert(parts[1:])
}

func (d *dirNode) addTo(tree treeprint.Tree) {
	names := make([]string, 0, len(d.children))
	for name := range d.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := d.children[names[i]], d.children[names[j]]
		aDir, bDir := len(a.children) > 0, len(b.children) > 0
		if aDir != bDir {
			return aDir
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		child := d.children[name]
		if len(child.children) == 0 {
			tree.AddNode(name)
			continue
		}
		// An entry can share its name with a directory ("site" and "site/login").
		if child.entry {
			tree.AddNode(name)
		}
		child.addTo(tree.AddBranch(name))
	}
}
