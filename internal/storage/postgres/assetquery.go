package postgres

import (
	"strconv"
	"strings"

	"github.com/hongminglow/mediavault/internal/models"
)

const assetColumns = `id, name, kind, extension, mime_type, title, description, program, recording_year, duration, storage_path, size, created_at`

// assetQuery accumulates a WHERE clause and its positional arguments. The
// list and count statements are both rendered from the same instance so
// their filters can never drift apart.
type assetQuery struct {
	conds []string
	args  []any
}

func newAssetQuery(filter models.AssetFilter) *assetQuery {
	q := &assetQuery{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q.add(`name ILIKE `+q.next()+` ESCAPE '\'`, "%"+escapeLike(s)+"%")
	}
	if filter.Kind != "" {
		q.add(`kind = `+q.next(), string(filter.Kind))
	}
	if p := strings.TrimSpace(filter.Program); p != "" {
		q.add(`program = `+q.next(), p)
	}
	if m := strings.ToLower(strings.TrimSpace(filter.MimeType)); m != "" {
		if strings.HasSuffix(m, "/") {
			q.add(`mime_type LIKE `+q.next()+` ESCAPE '\'`, escapeLike(m)+"%")
		} else {
			q.add(`mime_type = `+q.next(), m)
		}
	}
	return q
}

// next returns the placeholder for the argument about to be added.
func (q *assetQuery) next() string {
	return "$" + strconv.Itoa(len(q.args)+1)
}

func (q *assetQuery) add(cond string, arg any) {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, arg)
}

func (q *assetQuery) where() string {
	var b strings.Builder
	b.WriteString(" WHERE TRUE")
	for _, c := range q.conds {
		b.WriteString(" AND ")
		b.WriteString(c)
	}
	return b.String()
}

// countSQL returns the unpaginated total for the filter.
func (q *assetQuery) countSQL() (string, []any) {
	return `SELECT COUNT(*) FROM assets` + q.where(), q.args
}

// listSQL returns one ordered page.
func (q *assetQuery) listSQL(sort models.SortOrder, page models.Page) (string, []any) {
	args := append(append([]any(nil), q.args...), page.Size, page.Offset())
	n := len(q.args)
	query := `SELECT ` + assetColumns + ` FROM assets` + q.where() +
		` ORDER BY ` + orderBy(sort) +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	return query, args
}

// orderBy always ends with id so equal keys page deterministically.
func orderBy(sort models.SortOrder) string {
	switch models.ParseSortOrder(string(sort)) {
	case models.SortOldest:
		return "created_at ASC, id ASC"
	case models.SortNameAsc:
		return "name ASC, id ASC"
	case models.SortNameDesc:
		return "name DESC, id DESC"
	case models.SortSizeDesc:
		return "size DESC, id DESC"
	case models.SortSizeAsc:
		return "size ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
