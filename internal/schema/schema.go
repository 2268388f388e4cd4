package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/yourbasic/graph"
)

// ErrCircularDependency is returned when foreign keys form a cycle
var ErrCircularDependency = errors.New("circular foreign key dependency")

// Table is a results-database table and the tables its foreign keys reference
type Table struct {
	Name       string
	DDL        string
	References []string
}

// ResultsTables is the schema used to store a processed cohort
var ResultsTables = []Table{
	{
		Name: "marks",
		DDL: `CREATE TABLE IF NOT EXISTS marks (
	roll_no VARCHAR(64) NOT NULL,
	subject_code INT NOT NULL,
	raw_value TEXT NOT NULL,
	marks DECIMAL(5,2) NOT NULL,
	grade VARCHAR(2) NOT NULL,
	grade_point TINYINT NOT NULL,
	PRIMARY KEY (roll_no, subject_code),
	FOREIGN KEY (roll_no) REFERENCES students (roll_no),
	FOREIGN KEY (subject_code) REFERENCES subjects (code)
)`,
		References: []string{"students", "subjects"},
	},
	{
		Name: "results",
		DDL: `CREATE TABLE IF NOT EXISTS results (
	roll_no VARCHAR(64) NOT NULL PRIMARY KEY,
	sgpa DECIMAL(4,2) NOT NULL,
	cgpa DECIMAL(4,2) NOT NULL,
	result ENUM('PASS','FAIL') NOT NULL,
	class_rank INT NOT NULL,
	FOREIGN KEY (roll_no) REFERENCES students (roll_no)
)`,
		References: []string{"students"},
	},
	{
		Name: "students",
		DDL: `CREATE TABLE IF NOT EXISTS students (
	roll_no VARCHAR(64) NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	source_order INT NOT NULL
)`,
	},
	{
		Name: "subjects",
		DDL: `CREATE TABLE IF NOT EXISTS subjects (
	code INT NOT NULL PRIMARY KEY,
	credit TINYINT NOT NULL,
	name VARCHAR(255) NOT NULL
)`,
	},
}

// CreationOrder sorts tables so every table comes after the tables it
// references. Ties keep alphabetical order so the result is stable.
func CreationOrder(tables []Table) ([]Table, error) {
	sorted := make([]Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	index := make(map[string]int, len(sorted))
	for i, t := range sorted {
		index[t.Name] = i
	}

	// Edge referenced -> dependent: the referenced table must be created first.
	g := graph.New(len(sorted))
	for i, t := range sorted {
		for _, ref := range t.References {
			if ref == t.Name {
				continue
			}
			j, ok := index[ref]
			if !ok {
				return nil, fmt.Errorf("table %s references unknown table %s", t.Name, ref)
			}
			g.Add(j, i)
		}
	}

	order, ok := graph.TopSort(g)
	if !ok {
		return nil, fmt.Errorf("%w among tables %v", ErrCircularDependency, circularTables(g, sorted))
	}

	ordered := make([]Table, len(order))
	for i, idx := range order {
		ordered[i] = sorted[idx]
	}
	return ordered, nil
}

// DropOrder is the reverse of CreationOrder
func DropOrder(tables []Table) ([]Table, error) {
	ordered, err := CreationOrder(tables)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	return ordered, nil
}

// circularTables names the tables that sit in a strongly connected component
// of more than one table
func circularTables(g *graph.Mutable, tables []Table) []string {
	var names []string
	for _, component := range graph.StrongComponents(g) {
		if len(component) < 2 {
			continue
		}
		for _, idx := range component {
			names = append(names, tables[idx].Name)
		}
	}
	sort.Strings(names)
	return names
}
