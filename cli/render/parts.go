package render

import (
	"strconv"

	"github.com/pithecene-io/mimestream/types"
)

// PartTable lists part records. It encodes as a plain array in json and
// yaml and as one row per part in table output.
type PartTable []*types.PartRecord

// Columns implements Tabular.
func (PartTable) Columns() []string {
	return []string{"INDEX", "CONTENT-TYPE", "CONTENT-ID", "SIZE", "MANIFEST", "PATH"}
}

// Rows implements Tabular.
func (p PartTable) Rows() [][]string {
	rows := make([][]string, 0, len(p))
	for _, rec := range p {
		manifest := ""
		if rec.Manifest {
			manifest = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Index),
			rec.ContentType,
			rec.ContentID,
			strconv.FormatInt(rec.SizeBytes, 10),
			manifest,
			rec.Path,
		})
	}
	return rows
}

var _ Tabular = PartTable(nil)
