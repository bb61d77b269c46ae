package index

import (
	"encoding/json"
	"strings"

	bolt "go.etcd.io/bbolt"

	"encore/internal/domain/content"
)

// Rebuild wipes and refills every bucket from the published collection.
// Entries are expected to be already normalized and draft-filtered by
// the collection loader.
func (s *Store) Rebuild(entries []content.Entry, fingerprint string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_ = tx.DeleteBucket(bMeta)
		_ = tx.DeleteBucket(bPermalink)
		_ = tx.DeleteBucket(bIdxPub)
		_ = tx.DeleteBucket(bIdxTag)
		_ = tx.DeleteBucket(bIdxCat)
		_ = tx.DeleteBucket(bInfo)

		metaB, _ := tx.CreateBucket(bMeta)
		permB, _ := tx.CreateBucket(bPermalink)
		idxPubB, _ := tx.CreateBucket(bIdxPub)
		idxTagB, _ := tx.CreateBucket(bIdxTag)
		idxCatB, _ := tx.CreateBucket(bIdxCat)
		infoB, _ := tx.CreateBucket(bInfo)

		for _, e := range entries {
			if strings.TrimSpace(e.Slug) == "" {
				continue
			}
			eb, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := metaB.Put([]byte(e.Slug), eb); err != nil {
				return err
			}
			if e.Permalink != "" {
				if err := permB.Put([]byte(e.Permalink), []byte(e.Slug)); err != nil {
					return err
				}
			}

			pubKey := makePubSlugKey(e.PublishDate.UnixNano(), e.Slug)
			if err := idxPubB.Put(pubKey, []byte{1}); err != nil {
				return err
			}

			for _, t := range e.Tags {
				if t.Slug == "" {
					continue
				}
				sb, err := idxTagB.CreateBucketIfNotExists([]byte(t.Slug))
				if err != nil {
					return err
				}
				if err := sb.Put(pubKey, []byte{1}); err != nil {
					return err
				}
			}

			if e.HasCategory() {
				sb, err := idxCatB.CreateBucketIfNotExists([]byte(e.Category.Slug))
				if err != nil {
					return err
				}
				if err := sb.Put(pubKey, []byte{1}); err != nil {
					return err
				}
			}
		}

		if fingerprint != "" {
			if err := infoB.Put(kFingerprint, []byte(fingerprint)); err != nil {
				return err
			}
		}
		return nil
	})
}
