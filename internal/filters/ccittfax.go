package filters

import (
	"bytes"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode expands Group 3 or Group 4 fax data into 1-bit rows, MSB
// first, with 0 as black. K < 0 selects Group 4.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := params.orDefault(params.Columns, 1728)
	rows := params.Rows
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}
	sf := ccitt.Group3
	if params.K < 0 {
		sf = ccitt.Group4
	}
	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, &ccitt.Options{Invert: params.BlackIs1})
	return io.ReadAll(r)
}
