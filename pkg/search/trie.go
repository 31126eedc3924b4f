package search

import "slices"

type Trie struct {
	Root *Node
}

type Node struct {
	Children map[rune]*Node
	IsLeaf   bool
}

func NewTrie() *Trie {
	return &Trie{
		Root: &Node{
			Children: make(map[rune]*Node),
		},
	}
}

func (t *Trie) Insert(word string) {
	node := t.Root
	for _, r := range word {
		if _, ok := node.Children[r]; !ok {
			node.Children[r] = &Node{
				Children: make(map[rune]*Node),
			}
		}
		node = node.Children[r]
	}
	node.IsLeaf = true
}

func (t *Trie) Search(word string) bool {
	node := t.find(word)
	return node != nil && node.IsLeaf
}

func (t *Trie) find(prefix string) *Node {
	node := t.Root
	for _, r := range prefix {
		next, ok := node.Children[r]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

// FindMatches returns the words starting with prefix in lexical order.
func (t *Trie) FindMatches(prefix string) []string {
	node := t.find(prefix)
	if node == nil {
		return nil
	}
	matches := t.findMatches(node, prefix)
	slices.Sort(matches)
	return matches
}

func (t *Trie) findMatches(node *Node, prefix string) []string {
	var matches []string
	if node.IsLeaf {
		matches = append(matches, prefix)
	}
	for r, child := range node.Children {
		matches = append(matches, t.findMatches(child, prefix+string(r))...)
	}
	return matches
}
