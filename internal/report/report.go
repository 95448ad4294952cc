// Package report renders decoded motions for people and tools.
package report

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/mtnkit/internal/joints"
	"github.com/samcharles93/mtnkit/internal/platform"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// Info is every parsed field of one motion.
type Info struct {
	File       string         `json:"file,omitempty"`
	Magic      string         `json:"magic"`
	MagicOK    bool           `json:"magic_ok"`
	Header     HeaderInfo     `json:"header"`
	Identity   *IdentityInfo  `json:"identity,omitempty"`
	Blocks     []BlockInfo    `json:"blocks"`
	Joints     []JointInfo    `json:"joints,omitempty"`
	Keyframes  []KeyframeInfo `json:"keyframes,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	ParseError string         `json:"parse_error,omitempty"`
}

type HeaderInfo struct {
	BlockNumber  uint32 `json:"block_number"`
	BlockSize    uint32 `json:"block_size"`
	SectionCount uint32 `json:"section_count"`
	Version      string `json:"version"`
	TileCount    uint16 `json:"keyframe_count"`
	FrameRateMs  uint16 `json:"frame_rate_ms"`
	Options      uint32 `json:"options"`
}

type IdentityInfo struct {
	ActionName string `json:"action_name"`
	Chunk      Chunk  `json:"chunk"`
	Author     string `json:"author"`
	Platform   string `json:"platform"`
	Public     string `json:"public_name"`
}

type BlockInfo struct {
	Index  int    `json:"index"`
	Number uint32 `json:"number"`
	Length uint32 `json:"length"`
	Offset int64  `json:"offset"`
	Kind   string `json:"kind"`
}

type JointInfo struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Known bool   `json:"known"`
}

type KeyframeInfo struct {
	Index     int         `json:"index"`
	TimeDelta uint32      `json:"time_delta"`
	ElapsedMs uint64      `json:"elapsed_ms"`
	Angles    []AngleInfo `json:"angles"`
}

type AngleInfo struct {
	Joint   string  `json:"joint"`
	URad    int32   `json:"urad"`
	Degrees float64 `json:"degrees"`
}

// Build collects the fields of doc. parseErr, when set, is the error that
// stopped decoding; the fields decoded before it are still reported.
func Build(doc *mtn.Document, parseErr error, plats *platform.Table, tr *joints.Translator) *Info {
	if plats == nil {
		plats = platform.Default()
	}
	if tr == nil {
		tr = &joints.Translator{}
	}
	info := &Info{
		Magic:   string(doc.Magic[:]),
		MagicOK: string(doc.Magic[:]) == mtn.Magic,
		Header: HeaderInfo{
			BlockNumber:  doc.Header.BlockNumber,
			BlockSize:    doc.Header.BlockSize,
			SectionCount: doc.Header.SectionCount,
			Version:      doc.Header.Version(),
			TileCount:    doc.Header.TileCount,
			FrameRateMs:  doc.Header.FrameRateMs,
			Options:      doc.Header.Options,
		},
	}
	if parseErr != nil {
		info.ParseError = parseErr.Error()
	}
	for _, w := range doc.Warnings {
		info.Warnings = append(info.Warnings, w.String())
	}
	for _, b := range doc.Blocks {
		info.Blocks = append(info.Blocks, BlockInfo{
			Index:  b.Index,
			Number: b.Header.Number,
			Length: b.Header.Length,
			Offset: b.Offset,
			Kind:   b.Kind(),
		})
	}

	var public string
	if id := doc.Identity(); id != nil {
		public = plats.PublicName(id.Platform.Key())
		info.Identity = &IdentityInfo{
			ActionName: id.ActionName.Text(),
			Chunk:      ParseChunkName(id.ActionName.Text()),
			Author:     id.Author.Text(),
			Platform:   id.Platform.Text(),
			Public:     public,
		}
	}

	names := tr.Names(public, doc.Joints())
	if jt := doc.Joints(); jt != nil {
		for i, code := range jt.Codes {
			info.Joints = append(info.Joints, JointInfo{
				Code:  code.Text(),
				Name:  names[i],
				Known: tr.MovementName(public, code) != code.Key(),
			})
		}
	}

	if ks := doc.Keyframes(); ks != nil {
		for i := range ks.Frames {
			kf := &ks.Frames[i]
			ki := KeyframeInfo{Index: i, TimeDelta: kf.TimeDelta, ElapsedMs: kf.ElapsedMs(doc.Header.FrameRateMs)}
			for j, v := range kf.Angles {
				name := fmt.Sprintf("Unknown joint %d", j+1)
				if j < len(names) {
					name = names[j]
				}
				ki.Angles = append(ki.Angles, AngleInfo{Joint: name, URad: v, Degrees: mtn.URadToDegrees(v)})
			}
			info.Keyframes = append(info.Keyframes, ki)
		}
	}
	return info
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteText writes the human-readable dump of info.
func WriteText(w io.Writer, info *Info) error {
	p := &printer{w: w}
	if info.File != "" {
		p.row("File", info.File)
	}
	if !info.MagicOK {
		p.row("Warning", fmt.Sprintf("signature %q does not match %q", info.Magic, mtn.Magic))
	}

	h := info.Header
	p.section("MTN Block 0")
	p.row("Block Number", fmt.Sprint(h.BlockNumber))
	p.row("Block Size", fmt.Sprint(h.BlockSize))
	p.row("Number of Sections", fmt.Sprint(h.SectionCount))
	p.row("Version", h.Version)
	p.row("Keyframe Count", fmt.Sprint(h.TileCount))
	p.row("Frame Rate (msec/frame)", fmt.Sprint(h.FrameRateMs))
	p.row("Options", fmt.Sprint(h.Options))

	for _, b := range info.Blocks {
		p.section(fmt.Sprintf("MTN Block %d (%s)", b.Number, b.Kind))
		p.row("Block Length", fmt.Sprint(b.Length))
		p.row("Offset", fmt.Sprint(b.Offset))
		switch b.Kind {
		case "identity":
			p.identity(info.Identity)
		case "joints":
			p.joints(info.Joints)
		case "keyframes":
			p.keyframes(info.Keyframes)
		}
	}

	for _, wrn := range info.Warnings {
		p.row("Warning", wrn)
	}
	if info.ParseError != "" {
		p.row("Error", info.ParseError)
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	line := strings.Repeat("-", len(title)+8)
	p.printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func (p *printer) row(label, value string) {
	p.printf("%-26s %s\n", label+":", value)
}

func (p *printer) identity(id *IdentityInfo) {
	if id == nil {
		return
	}
	p.row("Action Name", id.ActionName)
	p.printf("  %s\n", id.Chunk)
	p.row("Author/Utility name", id.Author)
	p.row("Platform", fmt.Sprintf("%s (%s)", id.Platform, id.Public))
}

func (p *printer) joints(js []JointInfo) {
	p.row("Number of Joints", fmt.Sprint(len(js)))
	for i, j := range js {
		name := j.Name
		if !j.Known {
			name += " (not in joint map)"
		}
		p.printf("  %3d  %-24s %s\n", i+1, j.Code, name)
	}
}

func (p *printer) keyframes(ks []KeyframeInfo) {
	for _, k := range ks {
		p.printf("  Keyframe %d: time delta %d, elapsed %d ms\n", k.Index+1, k.TimeDelta, k.ElapsedMs)
		for _, a := range k.Angles {
			p.printf("    %-24s %10d urad %8.2f deg\n", a.Joint, a.URad, a.Degrees)
		}
	}
}
