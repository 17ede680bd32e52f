package hash

import (
	"errors"

	"github.com/n3-go/core/pkg/util"
)

// MerkleTreeNode is a single node of a MerkleTree: either a leaf (wrapping
// a transaction/block hash) or an internal node (hash of its two children
// concatenated).
type MerkleTreeNode struct {
	hash        util.Uint256
	parent      *MerkleTreeNode
	leftChild   *MerkleTreeNode
	rightChild  *MerkleTreeNode
}

// Hash returns the node's digest.
func (n *MerkleTreeNode) Hash() util.Uint256 { return n.hash }

// IsLeaf returns true iff n has no children.
func (n *MerkleTreeNode) IsLeaf() bool { return n.leftChild == nil && n.rightChild == nil }

// IsRoot returns true iff n has no parent.
func (n *MerkleTreeNode) IsRoot() bool { return n.parent == nil }

// MerkleTree is a full binary tree of Uint256 hashes used to commit to a
// block's transaction set (the header's merkle_root field).
type MerkleTree struct {
	root  *MerkleTreeNode
	depth int
}

// NewMerkleTree builds a MerkleTree over the given leaf hashes, in order.
func NewMerkleTree(hashes []util.Uint256) (*MerkleTree, error) {
	if len(hashes) == 0 {
		return nil, errors.New("hash: merkle tree requires at least one hash")
	}
	nodes := make([]*MerkleTreeNode, len(hashes))
	for i, h := range hashes {
		nodes[i] = &MerkleTreeNode{hash: h}
	}
	root := buildMerkleTree(nodes)
	depth := 1
	for n := root; !n.IsLeaf(); n = n.leftChild {
		depth++
	}
	return &MerkleTree{root: root, depth: depth}, nil
}

// Root returns the tree's root hash.
func (t *MerkleTree) Root() util.Uint256 { return t.root.hash }

// buildMerkleTree recursively folds a level of nodes into its parent level,
// duplicating the last node of an odd-length level (the standard Bitcoin/
// Neo convention), until a single root remains.
func buildMerkleTree(leaves []*MerkleTreeNode) *MerkleTreeNode {
	if len(leaves) == 0 {
		panic("hash: buildMerkleTree requires at least one leaf")
	}
	if len(leaves) == 1 {
		return leaves[0]
	}
	parents := make([]*MerkleTreeNode, (len(leaves)+1)/2)
	for i := range parents {
		left := leaves[i*2]
		var right *MerkleTreeNode
		if i*2+1 < len(leaves) {
			right = leaves[i*2+1]
		} else {
			right = left
		}
		parent := &MerkleTreeNode{
			hash:       hashChildren(left.hash, right.hash),
			leftChild:  left,
			rightChild: right,
		}
		left.parent = parent
		if right != left {
			right.parent = parent
		}
		parents[i] = parent
	}
	return buildMerkleTree(parents)
}

func hashChildren(left, right util.Uint256) util.Uint256 {
	buf := make([]byte, 0, util.Uint256Size*2)
	buf = append(buf, left.BytesLE()...)
	buf = append(buf, right.BytesLE()...)
	return DoubleSha256(buf)
}

// CalcMerkleRoot computes the merkle root of hashes without constructing
// and retaining the full tree, for the common case where only the root is
// needed (e.g. validating a block header's merkle_root field).
func CalcMerkleRoot(hashes []util.Uint256) util.Uint256 {
	if len(hashes) == 0 {
		return util.Uint256{}
	}
	level := make([]util.Uint256, len(hashes))
	copy(level, hashes)
	for len(level) > 1 {
		next := make([]util.Uint256, (len(level)+1)/2)
		for i := range next {
			left := level[i*2]
			right := left
			if i*2+1 < len(level) {
				right = level[i*2+1]
			}
			next[i] = hashChildren(left, right)
		}
		level = next
	}
	return level[0]
}
