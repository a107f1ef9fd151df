package matcher

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/ocrdoc"
)

var deedLines = []string{
	"THIS INDENTURE, made this 14th day of March, 1926, between",
	"John A. Peterson and Mary Peterson, his wife, parties of the first part,",
	"and the Minneapolis Land Company, party of the second part.",
	"Lot Twelve (12), Block Four (4), Cedar Park Addition,",
	"It is understood and agreed that said premises shall not at any time",
	"be sold, conveyed, leased or occupied by any person not of the Caucasian race.",
	"Witness our hands and seals the day and year first above written.",
}

func BenchmarkMatch(b *testing.B) {
	cat := catalog.Default()
	for _, n := range []int{10, 100, 1000} {
		lines := make([]ocrdoc.Line, n)
		size := 0
		for i := range lines {
			text := strings.ToLower(deedLines[i%len(deedLines)])
			lines[i] = ocrdoc.Line{Index: i, Text: text}
			size += len(text)
		}
		b.Run(fmt.Sprintf("lines_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				hits := Match(lines, cat)
				_ = hits
			}
		})
	}
}
