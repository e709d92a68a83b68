package index

var (
	bMeta    = []byte("meta")    // key -> json
	bLessons = []byte("lessons") // lesson code -> json lesson
	bTopics  = []byte("topics")  // chapter + 0x00 + order -> json topic
	bIdxTag  = []byte("idx_tag") // tag -> sub-bucket of position + 0x00 + code
	bRuns    = []byte("runs")    // invTime + seq -> json run

	kFingerprint = []byte("fingerprint")
)
