package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizer(t *testing.T) {
	token := Tokenizer{MaxTokens: 100}
	assert.Equal(t, []Token{"hello", "world", "how", "are", "you"}, token.Tokenize("Hello world, how are you?"))
	assert.Equal(t, []Token{"hello", "world", "hej"}, token.Tokenize("Hello world, hello world hej hej world"))
}

func TestTokenizerMaxTokens(t *testing.T) {
	token := Tokenizer{MaxTokens: 2}
	assert.Equal(t, []Token{"a", "b"}, token.Tokenize("a b c d"))
}

func TestCommonTokenDeDuplication(t *testing.T) {
	token := Tokenizer{MaxTokens: 100}
	assert.Equal(t, []Token{"oouuycnsao"}, token.Tokenize("öôüûÿçñßæø Öôüûÿçñßæø"))
}

func TestTrie(t *testing.T) {
	trie := NewTrie()
	trie.Insert("sony")
	trie.Insert("sonos")
	trie.Insert("apple")

	assert.True(t, trie.Search("sony"))
	assert.False(t, trie.Search("son"))
	assert.Equal(t, []string{"sonos", "sony"}, trie.FindMatches("so"))
	assert.Nil(t, trie.FindMatches("x"))
}
