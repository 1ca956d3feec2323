package fetch

import (
	"net/url"
	"strings"

	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
)

type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters. Order is kept as some
// upstream endpoints are sensitive to it.
type Params []Param

// Add appends a parameter. Values are converted with tabular.AsString.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: tabular.AsString(value)})
}

// Encode returns the query string in insertion order
func (p Params) Encode() string {
	parts := make([]string, 0, len(p))
	for _, item := range p {
		parts = append(parts, url.QueryEscape(item.Key)+"="+url.QueryEscape(item.Value))
	}
	return strings.Join(parts, "&")
}

func (p Params) Get(key string) (string, bool) {
	for _, item := range p {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}
