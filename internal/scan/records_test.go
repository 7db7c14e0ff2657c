package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGBString(t *testing.T) {
	assert.Equal(t, "0.00", gbString(0))
	assert.Equal(t, "1.00", gbString(1<<30))
	assert.Equal(t, "2.50", gbString(1<<30*5/2))
	assert.Equal(t, "1024.00", gbString(1<<40))
}

func TestPctString(t *testing.T) {
	assert.Equal(t, "50.00", pctString(512, 1024))
	assert.Equal(t, "0.00", pctString(0, 1024))

	// Unlimited quota reports zero, never a division artifact.
	assert.Equal(t, "0.00", pctString(512, 0))
	assert.Equal(t, "0.00", pctString(512, -1))
}

func TestTimeString(t *testing.T) {
	assert.Empty(t, timeString(time.Time{}))

	ts := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-25T09:30:00Z", timeString(ts))
}

func TestFileRecordRow(t *testing.T) {
	captured := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)

	folder := FileRecord{
		DriveID:    "b!a",
		Path:       "/Projects",
		Name:       "Projects",
		IsFolder:   true,
		Depth:      0,
		CapturedAt: captured,
	}

	row := folder.row()
	assert.Len(t, row, len(fileHeader))
	assert.Equal(t, "folder", row[3])
	assert.Equal(t, "0", row[8])
	assert.Empty(t, row[5], "missing created timestamp stays empty")

	file := FileRecord{
		DriveID:    "b!a",
		Path:       "/Projects/plan.xlsx",
		Name:       "plan.xlsx",
		Size:       4096,
		Created:    captured,
		Depth:      1,
		CapturedAt: captured,
	}

	row = file.row()
	assert.Equal(t, "file", row[3])
	assert.Equal(t, "4096", row[4])
	assert.Equal(t, "2026-08-25T09:30:00Z", row[5])
	assert.Equal(t, "1", row[8])
}

func TestRecordRowsMatchHeaders(t *testing.T) {
	u := UserDriveRecord{}
	assert.Len(t, u.row(), len(userDriveHeader))

	s := SiteDriveRecord{}
	assert.Len(t, s.row(), len(siteDriveHeader))
}
