package bondkeeper

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

// headerSynonyms maps the column names seen in agency spreadsheets onto
// person fields. Matching is case-insensitive with surrounding whitespace
// ignored.
var headerSynonyms = map[string]string{
	"first name":    "first_name",
	"first_name":    "first_name",
	"firstname":     "first_name",
	"first":         "first_name",
	"last name":     "last_name",
	"last_name":     "last_name",
	"lastname":      "last_name",
	"last":          "last_name",
	"phone":         "phone",
	"phone number":  "phone",
	"phone_number":  "phone",
	"cell":          "phone",
	"mobile":        "phone",
	"email":         "email",
	"e-mail":        "email",
	"email address": "email",
	"address":       "address",
	"street":        "address",
	"city":          "city",
	"state":         "state",
	"zip":           "zip",
	"zip code":      "zip",
	"zipcode":       "zip",
	"dob":           "dob",
	"date of birth": "dob",
	"birth date":    "dob",
	"birthdate":     "dob",
	"alias":         "alias",
	"aka":           "alias",
	"notes":         "notes",
	"note":          "notes",
	"comments":      "notes",
}

// importDateLayouts are the formats accepted for dates in import files.
// Two-digit years follow time.Parse's pivot (69-99 into the 1900s).
var importDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
	"01/02/06",
	"1/2/06",
}

// RowOutcome describes what happened to a single import row.
type RowOutcome struct {
	Line   int    // 1-based line number in the file, including the header
	Name   string // The name parsed from the row, when any
	Status string // "created", "updated" or "error"
	Detail string // Human-readable reason for updates and errors
}

// ImportResult summarises a CSV import run.
type ImportResult struct {
	Created int
	Updated int
	Errors  int
	Rows    []RowOutcome
	DryRun  bool
}

// ImportPeople reads a CSV of defendants and creates a person per row. Rows
// missing a first or last name are rejected. With dedupeByPhone set, a row
// whose phone number is already on file updates that person instead of
// creating a second one. With dryRun set nothing is written; the result
// reports what a real run would do.
func (app *App) ImportPeople(reader io.Reader, dryRun bool, dedupeByPhone bool) (*ImportResult, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading import header : %w", err)
	}
	columns := make(map[int]string)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if field, ok := headerSynonyms[key]; ok {
			columns[i] = field
		}
	}
	if !mappedColumn(columns, "first_name") || !mappedColumn(columns, "last_name") {
		return nil, fmt.Errorf("import file has no first/last name columns")
	}

	result := &ImportResult{DryRun: dryRun}
	seenPhones := make(map[string]bool)
	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors++
			result.Rows = append(result.Rows, RowOutcome{Line: line, Status: "error", Detail: err.Error()})
			continue
		}

		person := &domain.Person{TenantID: tenantID}
		var rowErr string
		for i, field := range columns {
			if i >= len(record) {
				continue
			}
			value := cleanImportValue(record[i])
			switch field {
			case "first_name":
				person.FirstName = value
			case "last_name":
				person.LastName = value
			case "phone":
				person.Phone = value
			case "email":
				person.Email = value
			case "address":
				person.Address = value
			case "city":
				person.City = value
			case "state":
				person.State = value
			case "zip":
				person.Zip = value
			case "alias":
				person.Alias = value
			case "notes":
				person.Notes = value
			case "dob":
				if value == "" {
					continue
				}
				dob, err := ParseImportDate(value)
				if err != nil {
					rowErr = fmt.Sprintf("invalid date of birth %q", value)
					continue
				}
				person.DOB = dob
			}
		}

		if person.FirstName == "" || person.LastName == "" {
			result.Errors++
			result.Rows = append(result.Rows, RowOutcome{
				Line: line, Name: person.FullName(),
				Status: "error", Detail: "missing first or last name",
			})
			continue
		}
		if rowErr != "" {
			result.Errors++
			result.Rows = append(result.Rows, RowOutcome{
				Line: line, Name: person.FullName(),
				Status: "error", Detail: rowErr,
			})
			continue
		}

		if dedupeByPhone && person.Phone != "" && !seenPhones[strings.ToLower(person.Phone)] {
			existing, err := app.Repo.FindPersonByPhone(tenantID, person.Phone)
			if err != nil {
				return nil, fmt.Errorf("checking for duplicate phone : %w", err)
			}
			if existing != nil {
				mergePerson(existing, person)
				if !dryRun {
					if err := app.Repo.UpdatePerson(existing); err != nil {
						result.Errors++
						result.Rows = append(result.Rows, RowOutcome{
							Line: line, Name: existing.FullName(),
							Status: "error", Detail: err.Error(),
						})
						continue
					}
				}
				result.Updated++
				result.Rows = append(result.Rows, RowOutcome{
					Line: line, Name: existing.FullName(),
					Status: "updated", Detail: fmt.Sprintf("phone %s already on file", person.Phone),
				})
				continue
			}
		}
		if person.Phone != "" {
			seenPhones[strings.ToLower(person.Phone)] = true
		}

		if !dryRun {
			id, err := uuid.NewV7()
			if err != nil {
				return nil, fmt.Errorf("generating new uuid : %w", err)
			}
			person.ID = id
			if err := app.Repo.CreatePerson(person); err != nil {
				result.Errors++
				result.Rows = append(result.Rows, RowOutcome{
					Line: line, Name: person.FullName(),
					Status: "error", Detail: err.Error(),
				})
				continue
			}
		}
		result.Created++
		result.Rows = append(result.Rows, RowOutcome{Line: line, Name: person.FullName(), Status: "created"})
	}

	if !dryRun {
		err = app.WriteAudit("INFO", fmt.Sprintf("Imported %d people (%d updated, %d errors)",
			result.Created, result.Updated, result.Errors))
		if err != nil {
			app.Logger.Warn("writing import audit entry", "error", err)
		}
	}
	return result, nil
}

// mergePerson copies the row's non-empty fields onto the person already on
// file, leaving anything the row omits untouched.
func mergePerson(existing, row *domain.Person) {
	if row.FirstName != "" {
		existing.FirstName = row.FirstName
	}
	if row.LastName != "" {
		existing.LastName = row.LastName
	}
	if row.Email != "" {
		existing.Email = row.Email
	}
	if row.Address != "" {
		existing.Address = row.Address
	}
	if row.City != "" {
		existing.City = row.City
	}
	if row.State != "" {
		existing.State = row.State
	}
	if row.Zip != "" {
		existing.Zip = row.Zip
	}
	if !row.DOB.IsZero() {
		existing.DOB = row.DOB
	}
	if row.Alias != "" {
		existing.Alias = row.Alias
	}
	if row.Notes != "" {
		existing.Notes = row.Notes
	}
}

// mappedColumn reports whether any column maps onto the given field.
func mappedColumn(columns map[int]string, field string) bool {
	for _, mapped := range columns {
		if mapped == field {
			return true
		}
	}
	return false
}

// importValueReplacer folds the curly quotes and em/en dashes word
// processors substitute into their plain ASCII forms.
var importValueReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"–", "-", "—", "-",
)

// cleanImportValue strips the quoting and placeholder dashes spreadsheets
// leave behind, normalizing curly quotes and unicode dashes first.
func cleanImportValue(value string) string {
	value = importValueReplacer.Replace(value)
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'`)
	value = strings.TrimSpace(value)
	if value == "-" || value == "--" || strings.EqualFold(value, "n/a") {
		return ""
	}
	return value
}

// ParseImportDate parses a date in any of the formats agency spreadsheets
// use.
func ParseImportDate(value string) (time.Time, error) {
	value = cleanImportValue(value)
	for _, layout := range importDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
