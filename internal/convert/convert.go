// Package convert rewrites an MTN motion for another platform: the identity
// block gets the target's internal code, joint codes are translated and
// keyframes matching a reference pose take the target platform's angles.
package convert

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/samcharles93/mtnkit/internal/joints"
	"github.com/samcharles93/mtnkit/internal/logger"
	"github.com/samcharles93/mtnkit/internal/platform"
	"github.com/samcharles93/mtnkit/internal/pose"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// PoseSource supplies the reference pose catalog of a public platform name.
type PoseSource interface {
	Catalog(platform string) (*pose.Catalog, error)
}

// Converter holds the read-only tables of one process. A Converter may be
// used by several goroutines as long as nothing mutates its fields.
type Converter struct {
	Platforms  *platform.Table
	Translator *joints.Translator
	// Poses may be nil, which disables keyframe retargeting.
	Poses     PoseSource
	Decode    mtn.Options
	Encode    mtn.EncoderOptions
	// Tolerance is the pose match tolerance in degrees. Zero accepts exact
	// matches only; a negative value selects pose.DefaultTolerance.
	Tolerance float64
	// HeaderOnly rewrites identity and joint codes and copies keyframes unchanged.
	HeaderOnly bool
	// Labels names poses that carry no name of their own.
	Labels pose.Labels
	Log    logger.Logger
}

// New returns a Converter with the default platform table and empty joint
// tables.
func New() *Converter {
	return &Converter{
		Platforms:  platform.Default(),
		Translator: &joints.Translator{},
		Tolerance:  pose.DefaultTolerance,
		Log:        logger.Discard(),
	}
}

func (c *Converter) log() logger.Logger {
	if c.Log == nil {
		return logger.Discard()
	}
	return c.Log
}

func (c *Converter) labels() pose.Labels {
	if c.Labels == nil {
		return pose.DefaultLabels
	}
	return c.Labels
}

func (c *Converter) tolerance() float64 {
	if c.Tolerance < 0 {
		return pose.DefaultTolerance
	}
	return c.Tolerance
}

// PlatformTable returns the configured platform table, or the default one.
func (c *Converter) PlatformTable() *platform.Table {
	return c.platforms()
}

func (c *Converter) platforms() *platform.Table {
	if c.Platforms == nil {
		return platform.Default()
	}
	return c.Platforms
}

func (c *Converter) translator() *joints.Translator {
	if c.Translator == nil {
		return &joints.Translator{}
	}
	return c.Translator
}

// Convert reads a motion from r and writes it for target to w. The target is
// validated before anything is written. Blocks are streamed in order, so on a
// truncated input every block before the failing one is already in w; the
// error is returned together with the partial Result.
func (c *Converter) Convert(r io.ReadSeeker, w io.Writer, target string) (*Result, error) {
	plats := c.platforms()
	if err := plats.Validate(target); err != nil {
		return nil, err
	}

	res := &Result{
		ID:         uuid.NewString(),
		Target:     target,
		TargetCode: plats.InternalCode(target),
		HeaderOnly: c.HeaderOnly,
	}
	log := c.log().With("conversion", res.ID, "target", target)

	digest, err := digestReader(r)
	if err != nil {
		return nil, fmt.Errorf("hash input: %w", err)
	}
	res.InputDigest = digest

	dec, err := mtn.NewDecoder(r, c.Decode)
	if err != nil {
		return nil, err
	}

	h := blake3.New()
	cw := &countingWriter{w: io.MultiWriter(w, h)}
	defer func() {
		res.BytesWritten = cw.n
		res.OutputDigest = hex.EncodeToString(h.Sum(nil))
	}()

	enc := mtn.NewEncoder(cw, c.Encode)
	if err := enc.WriteHeader(dec.Magic(), dec.Header()); err != nil {
		return res, err
	}

	p := &pass{c: c, res: res, log: log}
	for {
		blk, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Warnings = dec.Warnings()
			log.Error("conversion stopped", "error", err, "blocks_written", enc.Blocks())
			return res, err
		}
		if err := enc.WriteBlock(p.transform(blk)); err != nil {
			res.Warnings = dec.Warnings()
			return res, err
		}
		res.Blocks++
		log.Debug("block written", "index", blk.Index, "kind", blk.Kind(), "length_in", blk.Header.Length, "offset_out", enc.Offset())
	}
	res.Warnings = dec.Warnings()
	for _, wrn := range res.Warnings {
		log.Warn("input warning", "offset", wrn.Offset, "detail", wrn.String())
	}
	return res, nil
}

// pass carries the state one conversion accumulates across blocks.
type pass struct {
	c         *Converter
	res       *Result
	log       logger.Logger
	srcPublic string
	retarget  *pose.Retargeter
}

func (r *pass) transform(blk *mtn.Block) *mtn.Block {
	out := *blk
	switch {
	case blk.Identity != nil:
		id := *blk.Identity
		r.res.SourcePlatform = blk.Identity.Platform.Text()
		r.srcPublic = r.c.platforms().PublicName(blk.Identity.Platform.Key())
		r.res.SourcePublic = r.srcPublic
		id.Platform = mtn.ShortString(r.res.TargetCode)
		out.Identity = &id
		if !r.c.HeaderOnly {
			r.retarget = r.retargeter()
		}
	case blk.Joints != nil:
		tr := r.c.translator()
		codes := make([]mtn.ShortString, len(blk.Joints.Codes))
		for i, code := range blk.Joints.Codes {
			to := tr.Translate(r.srcPublic, r.res.Target, code)
			codes[i] = to
			r.res.Joints = append(r.res.Joints, JointTranslation{
				Index:    i,
				From:     code.Text(),
				Movement: tr.MovementName(r.srcPublic, code),
				To:       to.Text(),
			})
		}
		out.Joints = &mtn.JointTable{Codes: codes}
	case blk.Keyframes != nil:
		ks := &mtn.KeyframeStream{Layout: blk.Keyframes.Layout, Frames: make([]mtn.Keyframe, len(blk.Keyframes.Frames))}
		for i, kf := range blk.Keyframes.Frames {
			angles, idx, ok := r.retarget.Apply(kf.Angles)
			if ok {
				name := r.retarget.Source.Name(idx, r.c.labels())
				r.res.Substitutions = append(r.res.Substitutions, pose.Substitution{Keyframe: i, Pose: idx, Name: name})
				r.log.Info("keyframe retargeted", "keyframe", i, "pose", idx, "name", name)
			}
			kf.Angles = angles
			ks.Frames[i] = kf
		}
		out.Keyframes = ks
		r.res.Keyframes = len(ks.Frames)
	}
	return &out
}

// retargeter loads both catalogs. A missing catalog on either side disables
// retargeting for this conversion; keyframes then pass through. A conversion
// to the source's own platform never substitutes keyframes.
func (r *pass) retargeter() *pose.Retargeter {
	if r.c.Poses == nil {
		return nil
	}
	if r.srcPublic == r.res.Target {
		r.log.Debug("retargeting skipped", "reason", "target is the source platform", "platform", r.srcPublic)
		return nil
	}
	src, err := r.c.Poses.Catalog(r.srcPublic)
	if err != nil {
		r.log.Warn("retargeting disabled", "platform", r.srcPublic, "error", err)
		return nil
	}
	dst, err := r.c.Poses.Catalog(r.res.Target)
	if err != nil {
		r.log.Warn("retargeting disabled", "platform", r.res.Target, "error", err)
		return nil
	}
	r.res.Retargeting = true
	return &pose.Retargeter{Source: src, Target: dst, Tolerance: r.c.tolerance()}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// digestReader hashes rs from the start and rewinds it.
func digestReader(rs io.ReadSeeker) (string, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	h := blake3.New()
	if _, err := io.Copy(h, rs); err != nil {
		return "", err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
