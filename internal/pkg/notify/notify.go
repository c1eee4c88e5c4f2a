// Package notify assembles and fans out the outbound notifications that
// follow a report being created or edited: one email and one Facebook page
// post, each carrying the report summary and its photographs.
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"petalert/app/models"
	"petalert/internal/pkg/facebook"
	"petalert/internal/pkg/mail"
	"petalert/internal/pkg/matching"
)

// PhotoAttachment is the single value type that carries photo payloads from
// the data-access boundary into both outbound channels.
type PhotoAttachment struct {
	ID        uint
	Role      string
	Data      []byte
	MimeType  string
	FileName  string
	SizeBytes int64
}

// AttachmentsFromPhotos converts stored photos once, at the boundary.
// Rows without binary data are dropped with a warning.
func AttachmentsFromPhotos(photos []models.Photo) []PhotoAttachment {
	out := make([]PhotoAttachment, 0, len(photos))
	for _, p := range photos {
		if len(p.Data) == 0 {
			log.Warnf("[Notify] Photo %d has no binary payload, not attaching", p.ID)
			continue
		}
		name := p.FileName
		if name == "" {
			name = "photo_" + strconv.FormatUint(uint64(p.ID), 10) + ".jpg"
		}
		out = append(out, PhotoAttachment{
			ID:        p.ID,
			Role:      p.Role,
			Data:      p.Data,
			MimeType:  p.MimeType,
			FileName:  name,
			SizeBytes: p.SizeBytes,
		})
	}
	return out
}

// Field is one labelled line of the report summary.
type Field struct {
	Label string
	Value string
}

// Subject returns the notification subject for a report kind.
func Subject(kind models.ReportKind) string {
	switch kind {
	case models.ReportKindFound:
		return "Pet found"
	case models.ReportKindMissing:
		return "Pet missing"
	default:
		return "Pet report"
	}
}

// Summary builds the ordered field list for the message body, covering every
// report attribute.
func Summary(r *models.PetReport) []Field {
	return []Field{
		{"ID", strconv.FormatUint(uint64(r.ID), 10)},
		{"Report kind", string(r.Kind)},
		{"Name", r.Name},
		{"Species", r.Species},
		{"Breed", formatOptString(r.Breed)},
		{"Age", formatOptInt(r.Age)},
		{"Locality", r.Locality},
		{"Postal code", r.PostalCode},
		{"Contact email", r.OwnerEmail},
		{"Contact phone", r.OwnerPhone},
		{"Color", r.Color},
		{"Sex", string(r.Sex)},
		{"Microchip", formatOptString(r.MicrochipID)},
		{"Weight", formatOptFloat(r.Weight)},
		{"Size", string(r.Size)},
		{"Description", formatOptString(r.Description)},
		{"Registered on", formatDate(&r.RegisteredOn)},
		{"Resolved on", formatDate(r.ResolvedOn)},
		{"Resolution status", formatResolution(r.ResolutionStatus)},
	}
}

// Body renders the plain-text message shared by the email and the page post.
func Body(subject string, fields []Field) string {
	lines := []string{subject, "", "Pet details:", "--------------------"}
	for _, f := range fields {
		value := f.Value
		if value == "" {
			value = "N/A"
		}
		lines = append(lines, f.Label+": "+value)
	}
	lines = append(lines, "", "This message was generated automatically by PetAlert.")
	return strings.Join(lines, "\n")
}

// Dispatcher pushes one report through both outbound channels. Channel
// failures are logged and isolated from each other; Dispatch never returns
// an error because by the time it runs the originating request has already
// been answered.
type Dispatcher struct {
	resolver matching.Resolver
	opts     matching.Options
	fb       *facebook.Client
}

func NewDispatcher(resolver matching.Resolver, opts matching.Options, fb *facebook.Client) *Dispatcher {
	return &Dispatcher{resolver: resolver, opts: opts, fb: fb}
}

// Dispatch computes the recipient list from the prior unresolved missing
// reports, then sends the email and attempts the Facebook post.
func (d *Dispatcher) Dispatch(report *models.PetReport, prior []matching.Candidate, photos []PhotoAttachment) {
	subject := Subject(report.Kind)
	body := Body(subject, Summary(report))
	recipients := matching.RecipientEmails(report, prior, d.resolver, d.opts)

	attachments := make([]mail.Attachment, 0, len(photos))
	for _, p := range photos {
		attachments = append(attachments, mail.Attachment{
			FileName: p.FileName,
			MimeType: p.MimeType,
			Data:     p.Data,
		})
	}
	if err := mail.SendReportMail(subject, body, recipients, attachments); err != nil {
		log.Errorf("[Notify] Email for report %d not sent: %v", report.ID, err)
	}

	if d.fb == nil || !d.fb.Configured() {
		log.Warnf("[Notify] Facebook post for report %d skipped: page not configured", report.ID)
		return
	}
	fbPhotos := make([]facebook.Photo, 0, len(photos))
	for _, p := range photos {
		fbPhotos = append(fbPhotos, facebook.Photo{
			FileName: p.FileName,
			MimeType: p.MimeType,
			Data:     p.Data,
		})
	}
	if err := d.fb.PostReport(body, fbPhotos); err != nil {
		log.Errorf("[Notify] Facebook post for report %d failed: %v", report.ID, err)
	}
}

func formatOptString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

func formatResolution(s *models.ResolutionStatus) string {
	if s == nil {
		return ""
	}
	return string(*s)
}
