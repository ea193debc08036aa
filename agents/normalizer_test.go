package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/formgraph/form"
)

func TestNormalizer_Text(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, "Hello world & co", n.Text("  <b>Hello</b>\n\n world &amp; co <script>alert(1)</script>"))
	assert.Equal(t, "", n.Text(""))
	assert.Equal(t, "AT&T", n.Text("AT&T"))
}

func TestNormalizer_Normalize(t *testing.T) {
	fields := []form.FormField{
		{DataID: " Name ", Label: "*Name", Type: form.FieldText, Value: "  <i>Ada</i>  "},
		{DataID: "Kind", Type: form.FieldRadio, Options: []string{" A ", "B"}},
	}

	msg, out := NewNormalizer().Normalize("<p>please   help</p>", fields)
	assert.Equal(t, "please help", msg)
	assert.Equal(t, "Name", out[0].DataID)
	assert.Equal(t, "<i>Ada</i>", out[0].Value)
	assert.True(t, out[0].Required)
	assert.Equal(t, []string{"A", "B"}, out[1].Options)

	assert.Equal(t, "  <i>Ada</i>  ", fields[0].Value)
	assert.False(t, fields[0].Required)
}

func TestNormalizer_KeepsValueText(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"less than", "x<y and z", "x<y and z"},
		{"angle bracket email", " <jane@example.com> ", "<jane@example.com>"},
		{"entity", "AT&amp;T", "AT&amp;T"},
		{"inner whitespace", "Ada  Lovelace", "Ada  Lovelace"},
	}
	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := n.Normalize("", []form.FormField{{DataID: "v", Value: tt.value}})
			assert.Equal(t, tt.want, out[0].Value)
		})
	}
}
