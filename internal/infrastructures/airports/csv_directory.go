package airports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

// Directory is an in-memory airport list loaded from a CSV file with the columns
// Code, Airport and Country, where Airport reads "City, Airport name".
type Directory struct {
	airports   []models.Airport
	byCode     map[string]models.Airport
	maxResults int
}

func Open(path string, maxResults int) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airport codes: %w", err)
	}
	defer f.Close()

	return Load(f, maxResults)
}

func Load(r io.Reader, maxResults int) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read airport header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	codeCol, okCode := columns["code"]
	airportCol, okAirport := columns["airport"]
	countryCol, okCountry := columns["country"]
	if !okCode || !okAirport || !okCountry {
		return nil, fmt.Errorf("airport codes header must contain Code, Airport and Country, got %v", header)
	}

	d := &Directory{byCode: map[string]models.Airport{}, maxResults: maxResults}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read airport codes: %w", err)
		}

		code := strings.ToUpper(strings.TrimSpace(record[codeCol]))
		if len(code) != 3 {
			continue
		}
		city, name, _ := strings.Cut(record[airportCol], ",")
		airport := models.Airport{
			Code:    code,
			City:    strings.TrimSpace(city),
			Name:    strings.TrimSpace(name),
			Country: strings.TrimSpace(record[countryCol]),
		}
		d.airports = append(d.airports, airport)
		if _, seen := d.byCode[code]; !seen {
			d.byCode[code] = airport
		}
	}

	return d, nil
}

func (d *Directory) Len() int { return len(d.airports) }

func (d *Directory) Lookup(code string) (models.Airport, bool) {
	a, ok := d.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return a, ok
}

// Search matches the query as a case-insensitive substring of the code, city,
// airport name or country. An exact code match is listed first.
func (d *Directory) Search(query string) []models.Airport {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var exact, rest []models.Airport
	for _, a := range d.airports {
		switch {
		case strings.ToLower(a.Code) == q:
			exact = append(exact, a)
		case strings.Contains(strings.ToLower(a.Code), q),
			strings.Contains(strings.ToLower(a.City), q),
			strings.Contains(strings.ToLower(a.Name), q),
			strings.Contains(strings.ToLower(a.Country), q):
			rest = append(rest, a)
		}
	}

	matches := append(exact, rest...)
	if d.maxResults > 0 && len(matches) > d.maxResults {
		matches = matches[:d.maxResults]
	}
	return matches
}
