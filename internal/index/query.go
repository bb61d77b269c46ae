package index

import (
	"encoding/json"
	"errors"
	"strings"

	bolt "go.etcd.io/bbolt"

	"encore/internal/domain/content"
)

var ErrNotFound = errors.New("not found")

type ListOptions struct {
	Page int
	Size int
}

func (s *Store) GetBySlug(slug string) (content.Entry, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.Entry{}, ErrNotFound
	}
	var e content.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(slug))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &e)
	})
	return e, err
}

// GetByPermalink resolves a permalink path to its entry.
func (s *Store) GetByPermalink(link string) (content.Entry, error) {
	link = strings.Trim(strings.TrimSpace(link), "/")
	if link == "" {
		return content.Entry{}, ErrNotFound
	}
	var slug string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bPermalink)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(link))
		if v == nil {
			return ErrNotFound
		}
		slug = string(v)
		return nil
	})
	if err != nil {
		return content.Entry{}, err
	}
	return s.GetBySlug(slug)
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	if size > 1000 {
		size = 1000
	}
	return page, size
}

// List walks the publish-date index in ascending order.
func (s *Store) List(opt ListOptions) ([]content.Entry, error) {
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)

	var out []content.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bIdxPub)
		metaB := tx.Bucket(bMeta)
		if idx == nil || metaB == nil {
			return nil
		}
		return collectPage(idx.Cursor(), metaB, opt, &out)
	})
	return out, err
}

func (s *Store) ListByTag(tagSlug string, opt ListOptions) ([]content.Entry, error) {
	return s.listSub(bIdxTag, tagSlug, opt)
}

func (s *Store) ListByCategory(catSlug string, opt ListOptions) ([]content.Entry, error) {
	return s.listSub(bIdxCat, catSlug, opt)
}

func (s *Store) listSub(parent []byte, key string, opt ListOptions) ([]content.Entry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)

	var out []content.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		pb := tx.Bucket(parent)
		metaB := tx.Bucket(bMeta)
		if pb == nil || metaB == nil {
			return nil
		}
		sb := pb.Bucket([]byte(key))
		if sb == nil {
			return nil
		}
		return collectPage(sb.Cursor(), metaB, opt, &out)
	})
	return out, err
}

func collectPage(cur *bolt.Cursor, metaB *bolt.Bucket, opt ListOptions, out *[]content.Entry) error {
	skip := (opt.Page - 1) * opt.Size
	for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
		slug := slugFromPubSlugKey(k)
		if slug == "" {
			continue
		}
		v := metaB.Get([]byte(slug))
		if v == nil {
			continue
		}
		var e content.Entry
		if err := json.Unmarshal(v, &e); err != nil {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		*out = append(*out, e)
		if len(*out) >= opt.Size {
			break
		}
	}
	return nil
}

// Fingerprint returns the stored build fingerprint, "" when absent.
func (s *Store) Fingerprint() (string, error) {
	var fp string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bInfo)
		if b == nil {
			return nil
		}
		if v := b.Get(kFingerprint); v != nil {
			fp = string(v)
		}
		return nil
	})
	return fp, err
}
