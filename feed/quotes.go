package feed

import (
	"fmt"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
)

// LiveQuotes fetches current market quotes for the given symbols using
// Yahoo's quote endpoint.
func LiveQuotes(symbols []string) ([]*finance.Quote, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}

	var quotes []*finance.Quote
	iter := quote.List(symbols)
	for iter.Next() {
		quotes = append(quotes, iter.Quote())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return quotes, nil
}
