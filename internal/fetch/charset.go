package fetch

import (
	"bytes"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DecodeCharset transcodes delimited source bytes from the named character
// set to UTF-8. Course sheets exported from Korean spreadsheet tools commonly
// arrive as CP949/EUC-KR, which the CSV reader would otherwise mangle. An
// empty or UTF-8 name is a passthrough; names follow the WHATWG encoding
// labels ("euc-kr", "cp949", "shift_jis", ...).
func DecodeCharset(data []byte, name string) ([]byte, error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return data, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: unknown charset %q", name)
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: decode %s", name)
	}
	return decoded, nil
}
