package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/rewired-gh/lottoracle/internal/logger"
	"github.com/rewired-gh/lottoracle/internal/models"
)

// csvHeader builds the interchange header: issue,red1..redN,blue,date.
func csvHeader(redCount int) []string {
	header := make([]string, 0, redCount+3)
	header = append(header, "issue")
	for i := 1; i <= redCount; i++ {
		header = append(header, fmt.Sprintf("red%d", i))
	}
	return append(header, "blue", "date")
}

// ExportCSV writes every archived draw to w in chronological order.
func (a *Archive) ExportCSV(w io.Writer) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader(a.game.RedCount)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	var werr error
	a.idx.Ascend(func(d models.Draw) bool {
		record := make([]string, 0, a.game.RedCount+3)
		record = append(record, d.Issue)
		for _, ball := range d.RedBalls {
			record = append(record, strconv.Itoa(ball))
		}
		record = append(record, strconv.Itoa(d.BlueBall), d.Date)
		if err := cw.Write(record); err != nil {
			werr = err
			return false
		}
		return true
	})
	if werr != nil {
		return fmt.Errorf("failed to write csv record: %w", werr)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ImportCSV reads draws from r and archives the ones not yet known, returning
// how many were added. Malformed rows are logged and skipped; an optional
// header row is recognized and ignored.
func (a *Archive) ImportCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = a.game.RedCount + 3
	cr.TrimLeadingSpace = true

	var draws []models.Draw
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn("skipping csv line %d: %v", line, err)
				continue
			}
			return 0, fmt.Errorf("failed to read csv: %w", err)
		}
		if line == 1 && record[0] == "issue" {
			continue
		}

		draw, err := parseCSVRecord(record, a.game)
		if err != nil {
			logger.Warn("skipping csv line %d: %v", line, err)
			continue
		}
		draws = append(draws, draw)
	}

	added, err := a.InsertDraws(draws)
	if err != nil {
		return 0, fmt.Errorf("failed to store imported draws: %w", err)
	}
	return added, nil
}

func parseCSVRecord(record []string, game models.Game) (models.Draw, error) {
	reds := make([]int, 0, game.RedCount)
	for _, field := range record[1 : 1+game.RedCount] {
		n, err := strconv.Atoi(field)
		if err != nil {
			return models.Draw{}, fmt.Errorf("bad red ball %q: %w", field, err)
		}
		reds = append(reds, n)
	}
	sort.Ints(reds)
	blue, err := strconv.Atoi(record[1+game.RedCount])
	if err != nil {
		return models.Draw{}, fmt.Errorf("bad blue ball %q: %w", record[1+game.RedCount], err)
	}

	draw := models.Draw{
		Issue:    record[0],
		RedBalls: reds,
		BlueBall: blue,
		Date:     record[len(record)-1],
	}
	if err := draw.Validate(game); err != nil {
		return models.Draw{}, err
	}
	return draw, nil
}
