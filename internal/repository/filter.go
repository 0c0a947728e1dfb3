package repository

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/capitalstack/directory/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern with LIKE metacharacters escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func anyContains(columns []string, term string) squirrel.Or {
	pattern := containsPattern(term)
	or := make(squirrel.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, squirrel.ILike{col: pattern})
	}
	return or
}

var (
	buyerSearchColumns   = []string{"company", "buy_box", "markets"}
	contactSearchColumns = []string{"first_name", "last_name", "full_name", "company", "title"}
)

func buyerPredicate(f domain.BuyerFilter) squirrel.And {
	where := squirrel.And{}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, anyContains(buyerSearchColumns, s))
	}
	if c := strings.TrimSpace(f.Category); c != "" && c != domain.AllCategories {
		where = append(where, squirrel.ILike{"category": containsPattern(c)})
	}
	if m := strings.TrimSpace(f.Market); m != "" {
		where = append(where, squirrel.ILike{"markets": containsPattern(m)})
	}
	return where
}

func contactPredicate(f domain.ContactFilter) squirrel.And {
	where := squirrel.And{}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, anyContains(contactSearchColumns, s))
	}
	if t := strings.TrimSpace(f.Title); t != "" && t != domain.AllTitles {
		where = append(where, squirrel.ILike{"title": containsPattern(t)})
	}
	if c := strings.TrimSpace(f.Company); c != "" {
		where = append(where, squirrel.ILike{"company": containsPattern(c)})
	}
	return where
}
