// Command ingest-email polls one IMAP mailbox for unseen messages, pulls
// any PDF attachment out of each, and runs it through the same Scanner used
// by the HTTP API, persisting a ScanRun audit row per attachment exactly
// like cmd/server does. It is a simple poll loop rather than an
// IDLE-driven listener, and never creates invoices or other domain records
// of its own.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dealsscannerpro/internal/categories"
	"dealsscannerpro/internal/config"
	"dealsscannerpro/internal/llm"
	"dealsscannerpro/internal/models"
	"dealsscannerpro/internal/pipeline"
	"dealsscannerpro/pkg/database"
)

// pollInterval is the mailbox-check cadence for deployments that cannot
// offer IMAP IDLE.
const pollInterval = 2 * time.Minute

// maxAttachmentBytes bounds how much of one attachment is read into memory,
// mirroring email_monitor.go's readWithLimit guard.
const maxAttachmentBytes = 32 << 20

func main() {
	log.Println("Starting DealsScannerPro email ingest...")

	cfg := config.Load()
	if cfg.IMAPHost == "" || cfg.IMAPUser == "" {
		log.Fatal("IMAP_HOST and IMAP_USER must be set")
	}

	db := database.Init(cfg.DataDir)
	if err := db.AutoMigrate(&models.ScanRun{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	categoryService := categories.NewService(cfg.CategoryServiceURL)
	llmClient := llm.NewClient(cfg.NormalizerURL, cfg.NormalizerKey, cfg.NormalizerModel)
	normalizer := pipeline.NewNormalizer(llmClient, categoryService)
	scanner := pipeline.NewScanner(pipeline.Services{Normalize: normalizer})

	for {
		if err := pollOnce(cfg, scanner, db); err != nil {
			log.Printf("[INGEST] poll error: %v", err)
		}
		time.Sleep(pollInterval)
	}
}

func pollOnce(cfg *config.Config, scanner *pipeline.Scanner, db *gorm.DB) error {
	addr := fmt.Sprintf("%s:993", cfg.IMAPHost)
	// #nosec G402 - some enterprise mail servers present self-signed certs.
	c, err := client.DialTLS(addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer c.Logout()

	if err := c.Login(cfg.IMAPUser, cfg.IMAPPassword); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	mailbox := cfg.IMAPMailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, false); err != nil {
		return fmt.Errorf("select %s: %w", mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(uids) == 0 {
		return nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 16)
	errCh := make(chan error, 1)
	go func() { errCh <- c.UidFetch(seqSet, items, messages) }()

	for msg := range messages {
		processMessage(scanner, db, msg, section)
		markSeen(c, msg.Uid)
	}
	return <-errCh
}

func processMessage(scanner *pipeline.Scanner, db *gorm.DB, msg *imap.Message, section *imap.BodySectionName) {
	r := msg.GetBody(section)
	if r == nil {
		return
	}
	mr, err := mail.CreateReader(r)
	if err != nil {
		log.Printf("[INGEST] mail reader error: %v", err)
		return
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[INGEST] part read error: %v", err)
			break
		}
		h, ok := p.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, _ := h.Filename()
		if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
			continue
		}
		content, err := io.ReadAll(io.LimitReader(p.Body, maxAttachmentBytes))
		if err != nil {
			log.Printf("[INGEST] attachment read error: %v", err)
			continue
		}
		scanAttachment(scanner, db, filename, content)
	}
}

func scanAttachment(scanner *pipeline.Scanner, db *gorm.DB, filename string, pdfBytes []byte) {
	start := time.Now()
	result, scanErr := scanner.Scan(context.Background(), pdfBytes, filename)
	duration := time.Since(start)

	run := models.ScanRun{
		ID:         uuid.New().String(),
		SourceFile: filename,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if scanErr != nil {
		run.Failed = true
		run.ErrorMessage = scanErr.Error()
		if err := db.Create(&run).Error; err != nil {
			log.Printf("[INGEST] failed to persist failed scan run: %v", err)
		}
		log.Printf("[INGEST] scan failed for %s: %v", filename, scanErr)
		return
	}

	run.Retailer = result.Meta.Retailer
	run.RetailerConfidence = result.Meta.RetailerConfidence
	run.ValidFrom = result.Meta.ValidFrom
	run.ValidTo = result.Meta.ValidTo
	run.TotalPages = result.Stats.TotalPages
	run.TotalBlocks = result.Stats.TotalBlocks
	run.OffersDetected = result.Stats.OffersDetected
	run.OffersExtracted = result.Stats.OffersExtracted
	run.ScannerVersion = result.Stats.ScannerVersion
	if err := db.Create(&run).Error; err != nil {
		log.Printf("[INGEST] failed to persist scan run: %v", err)
	}
	log.Printf("[INGEST] scanned %s: retailer=%s offers=%d", filename, run.Retailer, result.Stats.OffersExtracted)
}

func markSeen(c *client.Client, uid uint32) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := c.UidStore(seqSet, item, flags, nil); err != nil {
		log.Printf("[INGEST] mark seen failed for uid %d: %v", uid, err)
	}
}
