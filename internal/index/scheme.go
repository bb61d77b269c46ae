package index

var (
	bMeta      = []byte("meta")      // slug -> entry json
	bPermalink = []byte("permalink") // permalink -> slug
	bIdxPub    = []byte("idx_pub")   // publishDate+slug key -> 1, ascending
	bIdxTag    = []byte("idx_tag")   // tagSlug -> sub-bucket of idx_pub keys
	bIdxCat    = []byte("idx_cat")   // categorySlug -> sub-bucket
	bInfo      = []byte("info")      // build fingerprint
)

var kFingerprint = []byte("fingerprint")
