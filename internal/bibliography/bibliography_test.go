package bibliography

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	tests := map[string]struct{ in, want string }{
		"quotes":         {"O'Rourke's book", `O\'Rourke\'s book`},
		"line breaks":    {"@book{a,\r\n  title={X}\n}", "@book{a,  title={X}}"},
		"double quotes":  {`say "hi"`, `say "hi"`},
		"already escape": {`\'`, `\\'`},
		"empty":          {"", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestInject_AllOccurrences(t *testing.T) {
	got := Inject("var a = '$bibliography'; var b = '$bibliography';", "x'y\n", "")
	require.Equal(t, `var a = 'x\'y'; var b = 'x\'y';`, got)

	got = Inject("bib = '@@BIB@@'", "z", "@@BIB@@")
	require.Equal(t, "bib = 'z'", got)
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	bib := filepath.Join(dir, "references.bib")
	tmpl := filepath.Join(dir, "bibliography.js.in")
	out := filepath.Join(dir, "staging", "resources", "bibliography.js")

	require.NoError(t, os.WriteFile(bib, []byte("@article{k,\n  author={D'Agostino}\n}\n"), 0o600))
	require.NoError(t, os.WriteFile(tmpl, []byte("const bibtex = '$bibliography';\n"), 0o600))

	require.NoError(t, Prepare(bib, tmpl, out, DefaultPlaceholder))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "const bibtex = '@article{k,  author={D\\'Agostino}}';\n", string(got))
}

func TestPrepare_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	err := Prepare(filepath.Join(dir, "nope.bib"), filepath.Join(dir, "t.in"), filepath.Join(dir, "o.js"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NoFileExists(t, filepath.Join(dir, "o.js"))
}
