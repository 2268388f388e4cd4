package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vitebski/mca-result-processor/internal/curriculum"
)

// VerifySnapshot checks that every results table holds the expected number of
// rows for a cohort of the given size. It returns the tables whose counts are
// off, mapped to the count actually found.
func (rs *ResultStore) VerifySnapshot(ctx context.Context, students int) (bool, map[string]int, error) {
	expected := map[string]int{
		"subjects": len(curriculum.Codes()),
		"students": students,
		"marks":    students * len(curriculum.Codes()),
		"results":  students,
	}

	rs.Logger.Infof("Verifying stored snapshot of %d students...", students)
	mismatched := make(map[string]int)

	for _, table := range rs.Tables {
		want, ok := expected[table.Name]
		if !ok {
			continue
		}

		result, err := rs.DB.ExecuteQuery(ctx, fmt.Sprintf("SELECT COUNT(*) AS count FROM %s", table.Name))
		if err != nil {
			return false, nil, fmt.Errorf("could not count rows in %s: %w", table.Name, err)
		}
		if len(result) == 0 {
			return false, nil, fmt.Errorf("no result returned for count query on table %s", table.Name)
		}

		count, err := strconv.Atoi(fmt.Sprint(result[0]["count"]))
		if err != nil {
			return false, nil, fmt.Errorf("could not parse count for table %s: %w", table.Name, err)
		}

		if count != want {
			rs.Logger.Warningf("Table %s has %d/%d expected rows", table.Name, count, want)
			mismatched[table.Name] = count
		}
	}

	if len(mismatched) == 0 {
		rs.Logger.Info("Verification successful: stored snapshot matches the processed cohort")
	} else {
		rs.Logger.Errorf("Verification failed: %d tables do not match", len(mismatched))
	}
	return len(mismatched) == 0, mismatched, nil
}
