package timeline

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/ivlev/comic2premiere/internal/timing"
)

// SequenceName is the visible name of the generated sequence inside the
// editor.
const SequenceName = "Comic Timeline"

// Serialize produces the xmeml document for one processing request.
//
// The structural shape is fixed by what Premiere will import: xmeml →
// sequence → rate{timebase 30, ntsc FALSE} → media → one video track with a
// clipitem per panel, plus an audio section with two tracks (a stereo pair)
// each holding one clipitem spanning the narration. File references carry
// the plain filename as pathurl; the images and audio are expected to sit
// next to the XML when it is imported.
//
// audioDuration may be zero when nothing measured the narration; the
// declared sequence duration then falls back to the last clip's end. When
// it is supplied, the sequence length follows the audio even if panel
// durations sum to something slightly different after rounding.
func Serialize(images []string, timings timing.Sequence, audioName string, audioDuration float64) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no panel images", ErrSerialization)
	}
	if len(images) != len(timings) {
		return nil, fmt.Errorf("%w: %d images but %d timing entries", ErrSerialization, len(images), len(timings))
	}
	for _, name := range images {
		if err := checkFilename(name); err != nil {
			return nil, err
		}
	}
	if err := checkFilename(audioName); err != nil {
		return nil, err
	}

	audioFrames := Frames(audioDuration)
	sequenceFrames := audioFrames
	if sequenceFrames <= 0 {
		sequenceFrames = Frames(timings.TotalSpan())
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	xmeml := doc.CreateElement("xmeml")
	xmeml.CreateAttr("version", "4")

	seq := xmeml.CreateElement("sequence")
	seq.CreateElement("name").CreateText(SequenceName)
	seq.CreateElement("duration").CreateText(strconv.Itoa(sequenceFrames))
	writeRate(seq)

	media := seq.CreateElement("media")

	video := media.CreateElement("video")
	videoTrack := video.CreateElement("track")
	for i, t := range timings {
		clipFrames := Frames(t.Duration)
		clip := videoTrack.CreateElement("clipitem")
		clip.CreateAttr("id", fmt.Sprintf("clipitem-%d", i+1))
		clip.CreateElement("name").CreateText(fmt.Sprintf("Panel %d", t.Panel))
		clip.CreateElement("duration").CreateText(strconv.Itoa(clipFrames))
		writeRate(clip)
		clip.CreateElement("start").CreateText(strconv.Itoa(Frames(t.Start)))
		clip.CreateElement("end").CreateText(strconv.Itoa(Frames(t.End())))
		clip.CreateElement("in").CreateText("0")
		clip.CreateElement("out").CreateText(strconv.Itoa(clipFrames))
		writeFile(clip, fmt.Sprintf("file-%d", i+1), images[i], true)
	}

	audio := media.CreateElement("audio")
	for track := 0; track < 2; track++ {
		audioTrack := audio.CreateElement("track")
		clip := audioTrack.CreateElement("clipitem")
		clip.CreateAttr("id", fmt.Sprintf("clipitem-audio-%d", track+1))
		clip.CreateElement("name").CreateText(audioName)
		clip.CreateElement("duration").CreateText(strconv.Itoa(audioFrames))
		writeRate(clip)
		clip.CreateElement("start").CreateText("0")
		clip.CreateElement("end").CreateText(strconv.Itoa(audioFrames))
		clip.CreateElement("in").CreateText("0")
		clip.CreateElement("out").CreateText(strconv.Itoa(audioFrames))
		// Premiere wants the file defined once; the second track refers
		// back to it by id.
		writeFile(clip, "file-audio", audioName, track == 0)

		st := clip.CreateElement("sourcetrack")
		st.CreateElement("mediatype").CreateText("audio")
		st.CreateElement("trackindex").CreateText(strconv.Itoa(track + 1))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func writeRate(parent *etree.Element) {
	rate := parent.CreateElement("rate")
	rate.CreateElement("timebase").CreateText(strconv.Itoa(FPS))
	rate.CreateElement("ntsc").CreateText("FALSE")
}

func writeFile(clip *etree.Element, id, name string, full bool) {
	file := clip.CreateElement("file")
	file.CreateAttr("id", id)
	if !full {
		return
	}
	file.CreateElement("name").CreateText(name)
	file.CreateElement("pathurl").CreateText(name)
}

// checkFilename rejects names that cannot survive XML text content. etree
// escapes markup characters for us, but the XML 1.0 charset simply has no
// representation for most control characters, and a filename that needs
// one is garbage anyway.
func checkFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty filename", ErrSerialization)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: filename %q is not valid UTF-8", ErrSerialization, name)
	}
	for _, r := range name {
		if r < 0x20 && r != '\t' {
			return fmt.Errorf("%w: filename %q contains control characters", ErrSerialization, name)
		}
		if r == 0xFFFE || r == 0xFFFF {
			return fmt.Errorf("%w: filename %q contains non-characters", ErrSerialization, name)
		}
	}
	return nil
}
