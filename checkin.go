package bondkeeper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"bondkeeper/domain"
)

var (
	// ErrIdentityMismatch is returned when the last name or date of birth
	// submitted on a self check-in does not match the person on file.
	ErrIdentityMismatch = errors.New("identity details do not match")
	// ErrUnsupportedAttachment is returned when an uploaded photo or
	// document is not of an accepted type.
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
)

// dobLayouts are the date-of-birth formats accepted on self check-ins.
var dobLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// SelfCheckIn carries everything a defendant submits through a self-service
// check-in link.
type SelfCheckIn struct {
	Token    string // The signed link token
	LastName string // Last name, matched case-insensitively
	DOB      string // Date of birth in YYYY-MM-DD or MM/DD/YYYY form
	Phone    string // Current phone number
	Address  string // Current address
	Photo    []byte // Optional photo, must be an image
	Document []byte // Optional supporting document, image or PDF
}

// RecordCheckIn saves a staff-recorded supervision contact for a person and
// writes it to the activity log.
func (app *App) RecordCheckIn(personID uuid.UUID, phone, address, method string) (*domain.CheckIn, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	if !domain.ValidCheckInMethod(method) {
		return nil, fmt.Errorf("method should be either: phone, online, in_person")
	}
	person, err := app.Repo.GetPerson(tenantID, personID)
	if err != nil {
		return nil, fmt.Errorf("loading person %s : %w", personID, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	checkIn := &domain.CheckIn{
		ID:        id,
		TenantID:  tenantID,
		PersonID:  person.ID,
		Phone:     phone,
		Address:   address,
		Method:    method,
		CreatedAt: time.Now(),
	}
	if err := app.Repo.CreateCheckIn(checkIn); err != nil {
		return nil, fmt.Errorf("creating check-in : %w", err)
	}
	err = app.WriteAudit("INFO", fmt.Sprintf("Check-in recorded for %s", person.FullName()),
		AuditWithPerson(person.ID),
		AuditWithContext(map[string]any{"method": method}),
	)
	if err != nil {
		app.Logger.Warn("writing check-in audit entry", "error", err)
	}
	return checkIn, nil
}

// SubmitSelfCheckIn handles a defendant's submission through a signed link:
// it verifies the token, confirms the submitted last name and date of birth
// against the file, validates any attachments, stores the check-in and
// notifies the agency's staff devices.
func (app *App) SubmitSelfCheckIn(submission SelfCheckIn) (*domain.CheckIn, error) {
	tenantID, personID, err := app.VerifySelfLink(submission.Token)
	if err != nil {
		return nil, err
	}
	activeTenant, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	if tenantID != activeTenant {
		return nil, ErrLinkInvalid
	}
	person, err := app.Repo.GetPerson(tenantID, personID)
	if err != nil {
		return nil, fmt.Errorf("loading person %s : %w", personID, err)
	}
	if err := verifyIdentity(person, submission.LastName, submission.DOB); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	checkIn := &domain.CheckIn{
		ID:        id,
		TenantID:  tenantID,
		PersonID:  person.ID,
		Phone:     strings.TrimSpace(submission.Phone),
		Address:   strings.TrimSpace(submission.Address),
		Method:    domain.CheckInMethodOnline,
		CreatedAt: time.Now(),
	}
	if len(submission.Photo) > 0 {
		photoType := mimetype.Detect(submission.Photo)
		if !strings.HasPrefix(photoType.String(), "image/") {
			return nil, fmt.Errorf("photo %s : %w", photoType.String(), ErrUnsupportedAttachment)
		}
		checkIn.Photo = submission.Photo
		checkIn.PhotoType = photoType.String()
	}
	if len(submission.Document) > 0 {
		documentType := mimetype.Detect(submission.Document)
		if !strings.HasPrefix(documentType.String(), "image/") && !documentType.Is("application/pdf") {
			return nil, fmt.Errorf("document %s : %w", documentType.String(), ErrUnsupportedAttachment)
		}
		checkIn.Document = submission.Document
		checkIn.DocumentType = documentType.String()
	}

	if err := app.Repo.CreateCheckIn(checkIn); err != nil {
		return nil, fmt.Errorf("creating check-in : %w", err)
	}

	err = app.WriteAudit("INFO", fmt.Sprintf("Self check-in received from %s", person.FullName()),
		AuditWithPerson(person.ID),
		AuditWithContext(map[string]any{"method": checkIn.Method, "phone": checkIn.Phone}),
	)
	if err != nil {
		app.Logger.Warn("writing self check-in audit entry", "error", err)
	}

	if app.OnCheckIn != nil {
		if err := app.OnCheckIn(checkIn); err != nil {
			app.Logger.Warn("running check-in handler", "error", err)
		}
	}

	notification := Notification{
		Title: "Self check-in received",
		Body:  fmt.Sprintf("%s checked in", person.FullName()),
	}
	if err := app.NotifyTenant(notification); err != nil {
		app.Logger.Warn("notifying staff devices", "error", err)
	}

	return checkIn, nil
}

// DaysSinceLastCheckIn returns the whole days since a person's latest
// check-in, or -1 when the person has never checked in.
func (app *App) DaysSinceLastCheckIn(personID uuid.UUID) (int, error) {
	last, err := app.Repo.LastCheckIn(personID)
	if err != nil {
		return 0, fmt.Errorf("retrieving last check-in : %w", err)
	}
	if last == nil {
		return -1, nil
	}
	return int(time.Since(last.CreatedAt).Hours() / 24), nil
}

// verifyIdentity confirms the submitted last name and date of birth against
// the person on file. The last name comparison is case-insensitive; a person
// without a recorded date of birth only needs the name to match.
func verifyIdentity(person *domain.Person, lastName, dob string) error {
	if !strings.EqualFold(strings.TrimSpace(lastName), strings.TrimSpace(person.LastName)) {
		return ErrIdentityMismatch
	}
	if person.DOB.IsZero() {
		return nil
	}
	submitted, err := parseDOB(dob)
	if err != nil {
		return ErrIdentityMismatch
	}
	y1, m1, d1 := submitted.Date()
	y2, m2, d2 := person.DOB.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return ErrIdentityMismatch
	}
	return nil
}

// parseDOB parses a submitted date of birth in any accepted layout.
func parseDOB(dob string) (time.Time, error) {
	dob = strings.TrimSpace(dob)
	for _, layout := range dobLayouts {
		if parsed, err := time.Parse(layout, dob); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date of birth %q", dob)
}
