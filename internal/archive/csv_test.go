package archive

import (
	"reflect"
	"strings"
	"testing"

	"github.com/rewired-gh/lottoracle/internal/models"
)

func TestExportCSV(t *testing.T) {
	a := mustArchive(t, ":memory:")
	if _, err := a.InsertDraws([]models.Draw{
		{Issue: "2024102", RedBalls: []int{3, 7, 12, 18, 25, 30}, BlueBall: 9, Date: "2024-09-03"},
		{Issue: "2024101", RedBalls: []int{2, 5, 11, 19, 26, 33}, BlueBall: 4, Date: "2024-09-01"},
	}); err != nil {
		t.Fatalf("InsertDraws failed: %v", err)
	}

	var buf strings.Builder
	if err := a.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"issue,red1,red2,red3,red4,red5,red6,blue,date",
		"2024101,2,5,11,19,26,33,4,2024-09-01",
		"2024102,3,7,12,18,25,30,9,2024-09-03",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("exported CSV =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestCSVRoundTrip(t *testing.T) {
	src := mustArchive(t, ":memory:")
	if _, err := src.InsertDraws([]models.Draw{
		testDraw("2024101", 3),
		testDraw("2024102", 5),
		testDraw("2024103", 16),
	}); err != nil {
		t.Fatalf("InsertDraws failed: %v", err)
	}

	var buf strings.Builder
	if err := src.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	dst := mustArchive(t, ":memory:")
	added, err := dst.ImportCSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if added != 3 {
		t.Errorf("added = %d, want 3", added)
	}
	if !reflect.DeepEqual(dst.Draws(), src.Draws()) {
		t.Errorf("round-tripped draws differ:\n%v\n%v", dst.Draws(), src.Draws())
	}
}

func TestImportCSVWithoutHeader(t *testing.T) {
	a := mustArchive(t, ":memory:")

	csv := "2024101,2,5,11,19,26,33,4,2024-09-01\n"
	added, err := a.ImportCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
}

func TestImportCSVSortsReds(t *testing.T) {
	a := mustArchive(t, ":memory:")

	csv := "2024101,33,5,26,2,19,11,4,2024-09-01\n"
	if _, err := a.ImportCSV(strings.NewReader(csv)); err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	got := a.Draws()[0].RedBalls
	if !reflect.DeepEqual(got, []int{2, 5, 11, 19, 26, 33}) {
		t.Errorf("red balls = %v, want sorted", got)
	}
}

func TestImportCSVSkipsBadRows(t *testing.T) {
	a := mustArchive(t, ":memory:")

	csv := strings.Join([]string{
		"issue,red1,red2,red3,red4,red5,red6,blue,date",
		"2024101,2,5,11,19,26,33,4,2024-09-01",
		"2024102,2,5,x,19,26,33,4,2024-09-02",  // non-numeric red
		"2024103,2,5,11,19,26,99,4,2024-09-03", // red out of range
		"2024104,2,5,11,19,26",                 // wrong field count
		"2024105,3,7,12,18,25,30,9,2024-09-05",
	}, "\n") + "\n"

	added, err := a.ImportCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	issues := make([]string, 0, 2)
	for _, d := range a.Draws() {
		issues = append(issues, d.Issue)
	}
	if !reflect.DeepEqual(issues, []string{"2024101", "2024105"}) {
		t.Errorf("imported issues = %v", issues)
	}
}

func TestImportCSVDedupes(t *testing.T) {
	a := mustArchive(t, ":memory:")

	csv := "2024101,2,5,11,19,26,33,4,2024-09-01\n"
	if _, err := a.ImportCSV(strings.NewReader(csv)); err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	added, err := a.ImportCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0 on re-import", added)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}
