package wikigraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindLinks(t *testing.T) {
	tests := []struct {
		in  string
		exp []string
	}{
		{"no links", []string{}},
		{"[[A]] and [[B|the b]]", []string{"A", "B"}},
		{"[[C#sec]] [[#Local]]", []string{"C#sec", "#Local"}},
		{"[[de:Schwämme]]", []string{"de:Schwämme"}},
		{"<nowiki>[[Hidden]]</nowiki> [[Shown]]", []string{"Shown"}},
		{"<nowiki>\n[[Hidden]]\n</nowiki>", []string{}},
		{"[[A]][[A]]", []string{"A", "A"}},
		{"[[Unclosed", []string{"Unclosed"}},
	}

	for _, test := range tests {
		assert.Equal(t, test.exp, FindLinks(test.in), test.in)
	}
}

func TestFindLinksSponge(t *testing.T) {
	links := FindLinks(readSponge(t))
	assert.Len(t, links, 578)
	assert.Equal(t, []string{"Aplysina archeri", "Robert Edmund Grant", "Robert Bentley Todd"}, links[:3])
}
