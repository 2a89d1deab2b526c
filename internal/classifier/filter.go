package classifier

import "github.com/harrison/filefuser/internal/models"

func filter(records []models.ClassificationRecord, keep func(models.ClassificationRecord) bool) []models.ClassificationRecord {
	out := make([]models.ClassificationRecord, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// OnlyErrors returns the records that failed classification.
func OnlyErrors(records []models.ClassificationRecord) []models.ClassificationRecord {
	return filter(records, models.ClassificationRecord.Failed)
}

// OnlyText returns the records classified as text, in input order.
func OnlyText(records []models.ClassificationRecord) []models.ClassificationRecord {
	return filter(records, models.ClassificationRecord.Text)
}

// OnlyBinaries returns the records classified as binary.
func OnlyBinaries(records []models.ClassificationRecord) []models.ClassificationRecord {
	return filter(records, models.ClassificationRecord.Binary)
}

// Paths extracts the paths of a record slice.
func Paths(records []models.ClassificationRecord) []string {
	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.Path
	}
	return paths
}
