package build

import (
	"crypto/sha256"
	"encoding/hex"
)

// GeneratorVersion changes whenever statement layout changes, invalidating
// fingerprints recorded by older builds.
const GeneratorVersion = "coursesql/3"

type Fingerprint struct {
	InputHash     string `json:"input_hash"`
	ConfigHash    string `json:"config_hash"`
	GeneratorHash string `json:"generator_hash"`
	TemplateHash  string `json:"template_hash"`
	RenderHash    string `json:"render_hash"`
}

func (f *Fingerprint) ComputeRenderHash() {
	h := sha256.New()
	h.Write([]byte(f.InputHash))
	h.Write([]byte(f.ConfigHash))
	h.Write([]byte(f.GeneratorHash))
	h.Write([]byte(f.TemplateHash))
	f.RenderHash = hex.EncodeToString(h.Sum(nil))
}

func GeneratorHash(policy string) string {
	sum := sha256.Sum256([]byte(GeneratorVersion + "\x00" + policy))
	return hex.EncodeToString(sum[:])
}
