// Package vfs implements the in-memory virtual filesystem tree described in
// SPEC_FULL.md §4.9: a SuperBlock owning a tree of IndexNodes, with
// directory lookup, creation and listing walking that tree path component
// by component and dispatching to the owning module's queue for anything a
// pure in-memory tree cannot answer itself (block/char-backed files).
// Grounded on original_source/kernel/src/fs/{mod,super_block}.rs's
// SuperBlock/File/queue shape, adapted to a synchronous, dependency-free
// in-memory tree since this package predates any real block device driver
// being wired in.
package vfs

import (
	"strings"

	"petos/kernel"
	"petos/kernel/module"
	"petos/kernel/object"
)

// NodeKind distinguishes a directory from a regular file in the tree.
type NodeKind uint8

const (
	NodeDir NodeKind = iota
	NodeFile
)

// IndexNode is one entry in the VFS tree: a directory with children, or a
// leaf file optionally backed by a module (so reads/writes route to a
// device's work queue instead of an in-memory buffer).
type IndexNode struct {
	header   object.Object
	Name     string
	Kind     NodeKind
	parent   *IndexNode
	children map[string]*IndexNode
	backing  *module.Module // nil for a purely in-memory file
	data     []byte         // used only when backing == nil
}

// Obj implements object.Container.
func (n *IndexNode) Obj() *object.Object { return &n.header }

// SuperBlock owns a VFS tree rooted at Root.
type SuperBlock struct {
	Root      *IndexNode
	BlockSize int
}

// NewSuperBlock constructs an empty filesystem with a single root
// directory.
func NewSuperBlock(blockSize int) *SuperBlock {
	root := &IndexNode{
		header:   object.NewObject(object.KindQueue),
		Name:     "/",
		Kind:     NodeDir,
		children: make(map[string]*IndexNode),
	}
	return &SuperBlock{Root: root, BlockSize: blockSize}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// walk resolves path against sb's tree, returning the node and its parent.
// If createMissingDirs is true, absent intermediate directories are
// created rather than reported as an error (used by Mkdir -p semantics);
// the leaf component is never auto-created.
func (sb *SuperBlock) walk(path string, createMissingDirs bool) (node *IndexNode, parent *IndexNode, leaf string, err *kernel.Error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return sb.Root, nil, "", nil
	}

	cur := sb.Root
	for i, part := range parts {
		isLeaf := i == len(parts)-1

		child, ok := cur.children[part]
		if !ok {
			if isLeaf {
				return nil, cur, part, &kernel.Error{Module: "vfs", Message: "path component not found", Kind: kernel.ErrInvalidData}
			}
			if !createMissingDirs {
				return nil, nil, "", &kernel.Error{Module: "vfs", Message: "path component not found", Kind: kernel.ErrInvalidData}
			}
			child = &IndexNode{
				header:   object.NewObject(object.KindQueue),
				Name:     part,
				Kind:     NodeDir,
				parent:   cur,
				children: make(map[string]*IndexNode),
			}
			cur.children[part] = child
		}

		if !isLeaf && child.Kind != NodeDir {
			return nil, cur, part, &kernel.Error{Module: "vfs", Message: "path component is not a directory", Kind: kernel.ErrInvalidData}
		}

		cur = child
	}

	return cur, cur.parent, parts[len(parts)-1], nil
}

// Mkdir creates path and any missing parent directories, matching the
// end-to-end mkdir/create/list scenario SPEC_FULL.md §8 describes. A path
// that already exists is reported as an error.
func (sb *SuperBlock) Mkdir(path string) (*IndexNode, *kernel.Error) {
	_, parent, leaf, err := sb.walk(path, true)
	if err == nil {
		return nil, &kernel.Error{Module: "vfs", Message: "path already exists", Kind: kernel.ErrBusyResource}
	}
	if parent == nil {
		return nil, err
	}
	if _, exists := parent.children[leaf]; exists {
		return nil, &kernel.Error{Module: "vfs", Message: "path already exists", Kind: kernel.ErrBusyResource}
	}

	dir := &IndexNode{
		header:   object.NewObject(object.KindQueue),
		Name:     leaf,
		Kind:     NodeDir,
		parent:   parent,
		children: make(map[string]*IndexNode),
	}
	parent.children[leaf] = dir
	return dir, nil
}

// Create makes a regular file at path, optionally backed by a module (a
// nil backing gives a purely in-memory file).
func (sb *SuperBlock) Create(path string, backing *module.Module) (*IndexNode, *kernel.Error) {
	_, parent, leaf, err := sb.walk(path, false)
	if err == nil {
		return nil, &kernel.Error{Module: "vfs", Message: "path already exists", Kind: kernel.ErrBusyResource}
	}
	if parent == nil {
		return nil, err
	}
	if _, exists := parent.children[leaf]; exists {
		return nil, &kernel.Error{Module: "vfs", Message: "path already exists", Kind: kernel.ErrBusyResource}
	}

	file := &IndexNode{
		header:  object.NewObject(object.KindQueue),
		Name:    leaf,
		Kind:    NodeFile,
		parent:  parent,
		backing: backing,
	}
	parent.children[leaf] = file
	return file, nil
}

// Lookup resolves path to its node.
func (sb *SuperBlock) Lookup(path string) (*IndexNode, *kernel.Error) {
	node, _, _, err := sb.walk(path, false)
	return node, err
}

// List returns the names of dir's direct children, sorted is not
// guaranteed: callers that need a stable order should sort the result.
func (sb *SuperBlock) List(dir *IndexNode) ([]string, *kernel.Error) {
	if dir.Kind != NodeDir {
		return nil, &kernel.Error{Module: "vfs", Message: "not a directory", Kind: kernel.ErrInvalidData}
	}
	names := make([]string, 0, len(dir.children))
	for name := range dir.children {
		names = append(names, name)
	}
	return names, nil
}
