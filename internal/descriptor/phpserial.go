package descriptor

import (
	"strconv"
	"strings"

	"github.com/ralt/pirum/internal/models"
)

// SerializePHP encodes a tree in PHP's serialize() format, which is what PEAR
// installers read from deps.<version>.txt. A nil tree is an empty array.
func SerializePHP(n *models.Node) string {
	var b strings.Builder
	writePHP(&b, n)
	return b.String()
}

func writePHP(b *strings.Builder, n *models.Node) {
	if n == nil {
		b.WriteString("a:0:{}")
		return
	}

	switch n.Kind {
	case models.ScalarNode:
		writePHPString(b, n.Text)
	case models.MappingNode:
		b.WriteString("a:" + strconv.Itoa(len(n.Items)) + ":{")
		for i, key := range n.Keys {
			writePHPString(b, key)
			writePHP(b, n.Items[i])
		}
		b.WriteString("}")
	case models.SequenceNode:
		b.WriteString("a:" + strconv.Itoa(len(n.Items)) + ":{")
		for i, item := range n.Items {
			b.WriteString("i:" + strconv.Itoa(i) + ";")
			writePHP(b, item)
		}
		b.WriteString("}")
	}
}

// writePHPString writes s with its length in bytes
func writePHPString(b *strings.Builder, s string) {
	b.WriteString("s:")
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteString(":\"")
	b.WriteString(s)
	b.WriteString("\";")
}
