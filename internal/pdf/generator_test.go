package pdf

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-reports/internal/model"
)

func TestGenerateProducesPDF(t *testing.T) {
	report := model.DashboardReport{
		Range:       model.Range30Days,
		GeneratedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		Totals:      model.Totals{Vehicles: 3},
		Charts: model.Charts{
			VehicleStatus: []model.ChartPoint{{Category: "Active", Count: 2}},
			ShiftsByDay:   []model.WeekdayPoint{{Day: "Mon", Count: 1}},
		},
		Failures: map[string]string{"users": "timeout"},
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestGenerateEmptyReport(t *testing.T) {
	content, err := NewGenerator().Generate(model.DashboardReport{})
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}

func TestNewUTF8GeneratorRequiresFont(t *testing.T) {
	_, err := NewUTF8Generator(nil)
	assert.Error(t, err)
}

func TestGenerateWithUTF8Font(t *testing.T) {
	var fontData []byte
	for _, path := range []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
	} {
		if data, err := os.ReadFile(path); err == nil {
			fontData = data
			break
		}
	}
	if fontData == nil {
		t.Skip("no DejaVuSans.ttf on this machine")
	}

	generator, err := NewUTF8Generator(fontData)
	require.NoError(t, err)

	content, err := generator.Generate(model.DashboardReport{
		Range: model.RangeAll,
		Charts: model.Charts{
			IssueSeverity: []model.ChartPoint{{Category: "Ожидает Проверки", Count: 2}, {Category: "Émis", Count: 1}},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}
