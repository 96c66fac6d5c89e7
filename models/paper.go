package models

import (
	"fmt"
	"github.com/openaccess/exchange/constants"
	"strings"
	"time"
)

// Name is an author's name, split into first and last parts.
type Name struct {
	First string `json:"first" yaml:"first"`
	Last  string `json:"last" yaml:"last"`
}

// Author is one author of a paper.
type Author struct {
	Name  Name   `json:"name" yaml:"name"`
	Orcid string `json:"orcid,omitempty" yaml:"orcid,omitempty"`
}

// FullName returns the author's first and last names, separated
// by a space.
func (author Author) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", author.Name.First, author.Name.Last))
}

// Paper is the record of a paper we want to deposit. The deposit
// code treats it as read-only, with the exception of AddOaiRecord,
// which attaches the record created after a successful deposit.
type Paper struct {
	Id       int          `json:"id"`
	Title    string       `json:"title"`
	Abstract string       `json:"abstract,omitempty"`
	Authors  []Author     `json:"authors"`
	Records  []*OaiRecord `json:"records"`

	// PubDate is the publication date as the metadata store hands
	// it over. This is usually YYYY-MM-DD, but may be a full
	// timestamp or just a year.
	PubDate string `json:"date"`
}

// DOI returns the DOI of the first bibliographic record that has
// one, or an empty string if none of them do.
func (paper *Paper) DOI() string {
	for _, record := range paper.Records {
		if record != nil && record.DOI != "" {
			return record.DOI
		}
	}
	return ""
}

// AuthorNames returns the full names of all authors, in order.
func (paper *Paper) AuthorNames() []string {
	names := make([]string, len(paper.Authors))
	for i, author := range paper.Authors {
		names[i] = author.FullName()
	}
	return names
}

// PublicationYear parses PubDate and returns the four-digit year.
func (paper *Paper) PublicationYear() (string, error) {
	pubDate := strings.TrimSpace(paper.PubDate)
	if pubDate == "" {
		return "", fmt.Errorf("Paper %d has no publication date", paper.Id)
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01", "2006"} {
		if parsed, err := time.Parse(layout, pubDate); err == nil {
			return parsed.Format("2006"), nil
		}
	}
	matches := constants.LeadingYearPattern.FindStringSubmatch(pubDate)
	if len(matches) > 1 {
		return matches[1], nil
	}
	return "", fmt.Errorf("Cannot read year from publication date '%s'", pubDate)
}

// FindOaiRecord returns the attached record with the given
// identifier, or nil.
func (paper *Paper) FindOaiRecord(identifier string) *OaiRecord {
	for _, record := range paper.Records {
		if record != nil && record.Identifier == identifier {
			return record
		}
	}
	return nil
}

// AddOaiRecord attaches record to the paper and returns the attached
// record. If a record with the same identifier is already attached,
// that one is updated with the new URLs and returned, so a deposit
// record is never attached twice.
func (paper *Paper) AddOaiRecord(record *OaiRecord) (*OaiRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("Cannot attach a nil record to paper %d", paper.Id)
	}
	if record.Identifier == "" {
		return nil, fmt.Errorf("Cannot attach a record without identifier to paper %d", paper.Id)
	}
	if existing := paper.FindOaiRecord(record.Identifier); existing != nil {
		existing.SplashURL = record.SplashURL
		existing.PDFURL = record.PDFURL
		return existing, nil
	}
	paper.Records = append(paper.Records, record)
	return record, nil
}
