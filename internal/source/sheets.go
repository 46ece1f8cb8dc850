package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/metagame/services/importer/config"
	"example.com/metagame/services/importer/internal/models"

	"github.com/pkg/errors"
)

// Column layout of the match result grid. The grid is positional; the
// other grids are addressed by header name.
const matchGridColumns = 14

// Accepted event date layouts. The sheet mixes formats depending on who
// entered the row.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
}

// Client fetches the published spreadsheet grids as CSV exports.
type Client struct {
	cfg        config.SourceConfig
	httpClient *http.Client
}

// NewClient creates a new sheet source client
func NewClient(cfg config.SourceConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// exportURL builds the CSV export URL for one grid of the sheet.
func (c *Client) exportURL(gid string) string {
	return fmt.Sprintf("%s/%s/export?format=csv&gid=%s", c.cfg.BaseURL, c.cfg.SheetID, gid)
}

// fetchCSV downloads and parses one grid.
func (c *Client) fetchCSV(ctx context.Context, gid string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exportURL(gid), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build sheet export request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch sheet export")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("sheet export returned status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse sheet CSV")
	}

	return records, nil
}

// FetchMatchRows returns the full match result grid as raw rows. Blank
// event dates forward-fill from the previous row; a date that is present
// but unparseable fails the fetch, and with it the run.
func (c *Client) FetchMatchRows(ctx context.Context) ([]models.RawResultRow, error) {
	records, err := c.fetchCSV(ctx, c.cfg.MatchesGID)
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, errors.New("match grid is empty")
	}

	rows := make([]models.RawResultRow, 0, len(records)-1)
	var lastDate time.Time
	for i, record := range records[1:] {
		row, err := parseMatchRecord(record)
		if err != nil {
			return nil, errors.Wrapf(err, "match grid row %d", i+2)
		}
		if row.EventDate.IsZero() {
			row.EventDate = lastDate
		} else {
			lastDate = row.EventDate
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseMatchRecord(record []string) (models.RawResultRow, error) {
	// Pad short records so trailing blank columns don't shift fields.
	for len(record) < matchGridColumns {
		record = append(record, "")
	}

	date, err := parseDate(record[12])
	if err != nil {
		return models.RawResultRow{}, err
	}

	return models.RawResultRow{
		Player1:        record[0],
		Player2:        record[1],
		P1Wins:         parseOptionalInt(record[2]),
		P2Wins:         parseOptionalInt(record[3]),
		Winner1:        parseOptionalInt(record[4]),
		Winner2:        parseOptionalInt(record[5]),
		P1Archetype:    record[6],
		P2Archetype:    record[7],
		P1Subarchetype: record[8],
		P2Subarchetype: record[9],
		P1Note:         record[10],
		P2Note:         record[11],
		EventDate:      date,
		EventType:      strings.TrimSpace(record[13]),
	}, nil
}

// FetchStandingRows returns the standings grid. Columns are addressed by
// header name because the grid layout has shifted over time.
func (c *Client) FetchStandingRows(ctx context.Context) ([]models.RawStandingRow, error) {
	records, err := c.fetchCSV(ctx, c.cfg.StandingsGID)
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, errors.New("standings grid is empty")
	}

	col := headerIndex(records[0])
	required := []string{"Player", "Rank", "Date"}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, errors.Errorf("standings grid is missing column %q", name)
		}
	}

	rows := make([]models.RawStandingRow, 0, len(records)-1)
	for i, record := range records[1:] {
		get := func(name string) string {
			idx, ok := col[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		date, err := parseDate(get("Date"))
		if err != nil {
			return nil, errors.Wrapf(err, "standings grid row %d", i+2)
		}

		rank := parseIntOrZero(get("Rank"))
		if rank == 0 && strings.TrimSpace(get("Player")) == "" {
			continue // trailing blank rows
		}

		rows = append(rows, models.RawStandingRow{
			Player:    strings.TrimSpace(get("Player")),
			Wins:      parseIntOrZero(get("Wins")),
			Losses:    parseIntOrZero(get("Losses")),
			Byes:      parseIntOrZero(get("Bye")),
			Rank:      rank,
			EventDate: date,
			EventType: strings.TrimSpace(get("Type")),
		})
	}

	return rows, nil
}

// Classifications is the parsed deck grid: the valid archetype pairs and
// the valid event-type labels.
type Classifications struct {
	Decks      [][2]string // archetype, subarchetype
	EventTypes []string
}

// FetchClassifications returns the deck grid used to seed the reference
// tables.
func (c *Client) FetchClassifications(ctx context.Context) (*Classifications, error) {
	records, err := c.fetchCSV(ctx, c.cfg.DeckGID)
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, errors.New("deck grid is empty")
	}

	col := headerIndex(records[0])
	archIdx, ok := col["Archetype"]
	if !ok {
		return nil, errors.New(`deck grid is missing column "Archetype"`)
	}
	subIdx := col["Subarchetype"]
	typeIdx, hasTypes := col["Event Types"]

	out := &Classifications{}
	for _, record := range records[1:] {
		if archIdx < len(record) && strings.TrimSpace(record[archIdx]) != "" {
			arch := strings.ToUpper(strings.TrimSpace(record[archIdx]))
			sub := ""
			if subIdx < len(record) {
				sub = strings.ToUpper(strings.TrimSpace(record[subIdx]))
			}
			out.Decks = append(out.Decks, [2]string{arch, sub})
		}
		if hasTypes && typeIdx < len(record) && strings.TrimSpace(record[typeIdx]) != "" {
			out.EventTypes = append(out.EventTypes, strings.ToUpper(strings.TrimSpace(record[typeIdx])))
		}
	}

	return out, nil
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	return col
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unparseable event date %q", value)
}

func parseOptionalInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	// Numeric cells export as floats when a formula produced them.
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

func parseIntOrZero(value string) int {
	if n := parseOptionalInt(value); n != nil {
		return *n
	}
	return 0
}
