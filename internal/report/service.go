package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signintech/gopdf"

	"symptom-triage-agent/internal/dialogue"
)

// TelegramClient is the delivery channel for clinician reports.
type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

// Service turns terminal dialogue outcomes into a PDF report and delivers
// it to the configured clinician chat. Emergency outcomes additionally get
// an immediate text alert, since a PDF is the wrong medium for urgency.
type Service struct {
	tgClient        TelegramClient
	clinicianChatID int64
}

func NewService(tg TelegramClient, clinicianChatID int64) *Service {
	return &Service{
		tgClient:        tg,
		clinicianChatID: clinicianChatID,
	}
}

var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

func (s *Service) SendDiagnosisReport(ctx context.Context, state dialogue.SessionState, result dialogue.DialogueResult) error {
	if result.IsEmergency {
		alert := fmt.Sprintf("EMERGENCY alert for session %s. Confirmed symptoms: %s",
			state.ID, joinOrNone(state.Symptoms.Sorted()))
		if err := s.tgClient.SendMessage(s.clinicianChatID, alert); err != nil {
			return fmt.Errorf("send emergency alert: %w", err)
		}
	}

	pdfData, err := s.buildPDF(state, result)
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("triage_%s.pdf", state.ID)
	if err := s.tgClient.SendDocument(s.clinicianChatID, pdfData, fileName); err != nil {
		return fmt.Errorf("send report document: %w", err)
	}
	return nil
}

func (s *Service) buildPDF(state dialogue.SessionState, result dialogue.DialogueResult) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, ensure ttf-dejavu is installed: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Symptom Triage Report")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", time.Now().Format("02.01.2006 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Session: %s", state.ID))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Outcome: %s", state.Phase))
	pdf.Br(25)

	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Confirmed symptoms:")
	pdf.Br(15)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	symptoms := state.Symptoms.Sorted()
	if len(symptoms) == 0 {
		pdf.Cell(nil, "- none recorded")
		pdf.Br(12)
	}
	for _, sym := range symptoms {
		pdf.Cell(nil, "- "+sym)
		pdf.Br(12)
	}
	pdf.Br(10)

	if result.Resolved != nil {
		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, fmt.Sprintf("Candidate condition: %s", result.Resolved.Name))
		pdf.Br(15)
		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		lines, _ := pdf.SplitText(result.Resolved.Description, 500)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
		if len(result.Resolved.Precautions) > 0 {
			pdf.Br(5)
			lines, _ = pdf.SplitText("Precautions: "+strings.Join(result.Resolved.Precautions, ", "), 500)
			for _, l := range lines {
				pdf.Cell(nil, l)
				pdf.Br(12)
			}
		}
	}

	if result.IsEmergency {
		pdf.Br(10)
		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, "EMERGENCY escalation - the patient was advised to seek immediate care.")
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none recorded"
	}
	return strings.Join(items, ", ")
}
