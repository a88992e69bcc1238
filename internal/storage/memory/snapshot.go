package memory

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/veralda/slotbook/internal/domain"
)

// Snapshot format: one pipe-delimited record per line, tagged with its
// entity. Free-text fields are percent-escaped so a pipe in a name
// cannot break the framing. Identifiers, statuses, ranges, and totals
// round-trip exactly; counters are rebuilt from the highest seen id.
const (
	tagResource    = "resource"
	tagRequester   = "requester"
	tagReservation = "reservation"
	tagItem        = "item"
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageFailure, op, err)
}

// WriteSnapshot serializes the full ledger.
func (s *Store) WriteSnapshot(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bw := bufio.NewWriter(w)
	for _, r := range s.resources {
		fmt.Fprintf(bw, "%s|%d|%s|%s|%d|%s|%d|%s|%d\n",
			tagResource, r.ID, esc(r.Name), esc(r.Kind),
			r.RateCents, r.RateUnit, r.Capacity, r.Status, r.CreatedAt.UnixNano())
	}
	for _, r := range s.requesters {
		fmt.Fprintf(bw, "%s|%d|%s|%s|%d\n",
			tagRequester, r.ID, esc(r.Name), esc(r.Email), r.CreatedAt.UnixNano())
	}
	for _, r := range s.reservations {
		fmt.Fprintf(bw, "%s|%d|%d|%d|%d|%d|%s|%d|%d|%d|%d\n",
			tagReservation, r.ID, r.ResourceID, r.RequesterID,
			r.Range.Start.UnixNano(), r.Range.End.UnixNano(), r.Status,
			r.BaseCents, r.DepositCents, r.TotalCents, r.CreatedAt.UnixNano())
	}
	for _, li := range s.items {
		fmt.Fprintf(bw, "%s|%d|%d|%s|%d|%d|%d\n",
			tagItem, li.ID, li.ReservationID, esc(li.Description),
			li.Quantity, li.UnitCents, li.CreatedAt.UnixNano())
	}
	if err := bw.Flush(); err != nil {
		return storageErr("write snapshot", err)
	}
	return nil
}

// ReadSnapshot replaces the store contents with the serialized ledger.
func (s *Store) ReadSnapshot(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resources = nil
	s.requesters = nil
	s.reservations = nil
	s.items = nil
	s.nextResourceID, s.nextRequesterID, s.nextReservationID, s.nextItemID = 0, 0, 0, 0

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if err := s.readRecord(text); err != nil {
			return storageErr(fmt.Sprintf("line %d", line), err)
		}
	}
	if err := sc.Err(); err != nil {
		return storageErr("read snapshot", err)
	}
	return nil
}

func (s *Store) readRecord(text string) error {
	fields := strings.Split(text, "|")

	// Numeric fields are collected through closures so each case reads
	// flat; the first bad field fails the whole record.
	var numErr error
	num := func(v string) int64 {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil && numErr == nil {
			numErr = fmt.Errorf("bad numeric field %q", v)
		}
		return n
	}
	ts := func(v string) time.Time {
		return time.Unix(0, num(v)).UTC()
	}

	switch fields[0] {
	case tagResource:
		if len(fields) != 9 {
			return fmt.Errorf("resource record has %d fields", len(fields))
		}
		r := domain.Resource{
			ID:        num(fields[1]),
			Name:      unesc(fields[2]),
			Kind:      unesc(fields[3]),
			RateCents: num(fields[4]),
			RateUnit:  domain.RateUnit(fields[5]),
			Capacity:  int(num(fields[6])),
			Status:    domain.ResourceStatus(fields[7]),
			CreatedAt: ts(fields[8]),
		}
		if numErr != nil {
			return numErr
		}
		if !r.Status.Valid() || !r.RateUnit.Valid() {
			return fmt.Errorf("corrupt resource %d", r.ID)
		}
		s.resources = append(s.resources, r)
		s.nextResourceID = max(s.nextResourceID, r.ID)
	case tagRequester:
		if len(fields) != 5 {
			return fmt.Errorf("requester record has %d fields", len(fields))
		}
		r := domain.Requester{
			ID:        num(fields[1]),
			Name:      unesc(fields[2]),
			Email:     unesc(fields[3]),
			CreatedAt: ts(fields[4]),
		}
		if numErr != nil {
			return numErr
		}
		s.requesters = append(s.requesters, r)
		s.nextRequesterID = max(s.nextRequesterID, r.ID)
	case tagReservation:
		if len(fields) != 11 {
			return fmt.Errorf("reservation record has %d fields", len(fields))
		}
		r := domain.Reservation{
			ID:          num(fields[1]),
			ResourceID:  num(fields[2]),
			RequesterID: num(fields[3]),
			Range: domain.TimeRange{
				Start: ts(fields[4]),
				End:   ts(fields[5]),
			},
			Status:       domain.ReservationStatus(fields[6]),
			BaseCents:    num(fields[7]),
			DepositCents: num(fields[8]),
			TotalCents:   num(fields[9]),
			CreatedAt:    ts(fields[10]),
		}
		if numErr != nil {
			return numErr
		}
		if !r.Status.Valid() || !r.Range.End.After(r.Range.Start) {
			return fmt.Errorf("corrupt reservation %d", r.ID)
		}
		s.reservations = append(s.reservations, r)
		s.nextReservationID = max(s.nextReservationID, r.ID)
	case tagItem:
		if len(fields) != 7 {
			return fmt.Errorf("item record has %d fields", len(fields))
		}
		li := domain.LineItem{
			ID:            num(fields[1]),
			ReservationID: num(fields[2]),
			Description:   unesc(fields[3]),
			Quantity:      int(num(fields[4])),
			UnitCents:     num(fields[5]),
			CreatedAt:     ts(fields[6]),
		}
		if numErr != nil {
			return numErr
		}
		s.items = append(s.items, li)
		s.nextItemID = max(s.nextItemID, li.ID)
	default:
		return fmt.Errorf("unknown record tag %q", fields[0])
	}
	return nil
}

// SaveFile writes the snapshot atomically: temp file, then rename.
func (s *Store) SaveFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return storageErr("create snapshot file", err)
	}
	if err := s.WriteSnapshot(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return storageErr("close snapshot file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return storageErr("rename snapshot file", err)
	}
	return nil
}

func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return storageErr("open snapshot file", err)
	}
	defer f.Close()
	return s.ReadSnapshot(f)
}

func esc(v string) string {
	return url.QueryEscape(v)
}

func unesc(v string) string {
	out, err := url.QueryUnescape(v)
	if err != nil {
		return v
	}
	return out
}
