package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Path
		wantErr bool
	}{
		{name: "empty", input: "", want: Path{}},
		{name: "single key", input: "controlPlane", want: Path{Key("controlPlane")}},
		{name: "dotted", input: "controlPlane.distro", want: Path{Key("controlPlane"), Key("distro")}},
		{name: "index", input: "env[2].name", want: Path{Key("env"), Index(2), Key("name")}},
		{name: "nested indices", input: "a[0][1]", want: Path{Key("a"), Index(0), Index(1)}},
		{name: "quoted key", input: `labels["app.kubernetes.io/name"]`, want: Path{Key("labels"), Key("app.kubernetes.io/name")}},
		{name: "leading quoted key", input: `["a.b"].c`, want: Path{Key("a.b"), Key("c")}},
		{name: "trailing dot", input: "a.", wantErr: true},
		{name: "double dot", input: "a..b", wantErr: true},
		{name: "unterminated bracket", input: "a[0", wantErr: true},
		{name: "bad index", input: "a[x]", wantErr: true},
		{name: "negative index", input: "a[-1]", wantErr: true},
		{name: "key after bracket without dot", input: "a[0]b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathStringRoundTrip(t *testing.T) {
	paths := []Path{
		{Key("controlPlane"), Key("distro"), Key("k3s"), Key("enabled")},
		{Key("controlPlane"), Key("statefulSet"), Key("env"), Index(0), Key("name")},
		{Key("sync"), Key("toHost"), Key("custom.resource")},
		{Key("a b")},
		{Index(0)},
	}

	for _, p := range paths {
		t.Run(p.String(), func(t *testing.T) {
			parsed, err := ParsePath(p.String())
			require.NoError(t, err)
			assert.Equal(t, p, parsed)
		})
	}
}

func TestPathChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = Key("root")

	a := base.Child(Key("a"))
	b := base.Child(Key("b"))

	assert.Equal(t, "root.a", a.String())
	assert.Equal(t, "root.b", b.String())
}
