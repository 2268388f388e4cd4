package generator

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

// AbsentMarker is written in place of a mark for an absent student
const AbsentMarker = "AB"

// CohortGenerator produces synthetic marks sheets for demos and load testing
type CohortGenerator struct {
	Faker       faker.Faker
	RollPrefix  string
	FirstRollNo int
	// AbsentRate is the chance, per subject, that a student is marked absent
	AbsentRate float64
	Logger     *logrus.Logger
}

// NewCohortGenerator creates a generator. A non-zero seed makes the output reproducible.
func NewCohortGenerator(seed int64, logger *logrus.Logger) *CohortGenerator {
	f := faker.New()
	if seed != 0 {
		f = faker.NewWithSeed(rand.NewSource(seed))
	}

	return &CohortGenerator{
		Faker:       f,
		FirstRollNo: 1001,
		AbsentRate:  0.02,
		Logger:      logger,
	}
}

// Generate creates n students with a mark, or an absence, for every subject
func (cg *CohortGenerator) Generate(n int) []models.RawStudent {
	students := make([]models.RawStudent, 0, n)
	absences := 0

	for i := 0; i < n; i++ {
		// Each student gets a base ability; subject marks scatter around it.
		ability := cg.Faker.IntBetween(30, 95)

		cells := make(map[models.SubjectCode]string, len(curriculum.Codes()))
		for _, code := range curriculum.Codes() {
			if cg.absent() {
				cells[code] = AbsentMarker
				absences++
				continue
			}
			cells[code] = strconv.Itoa(clamp(ability+cg.Faker.IntBetween(0, 30)-15, 0, 100))
		}

		students = append(students, models.RawStudent{
			RollNo: fmt.Sprintf("%s%d", cg.RollPrefix, cg.FirstRollNo+i),
			Name:   cg.Faker.Person().Name(),
			Cells:  cells,
		})
	}

	cg.Logger.Infof("Generated %d students (%d absences)", len(students), absences)
	return students
}

func (cg *CohortGenerator) absent() bool {
	if cg.AbsentRate <= 0 {
		return false
	}
	return float64(cg.Faker.IntBetween(0, 9999)) < cg.AbsentRate*10000
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
