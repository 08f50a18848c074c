package archive

import "strings"

const (
	scoreVideo = 30
	scoreAudio = 20
	scoreText  = -10
	scoreOther = -20

	// Original uploads are preferred over derivatives, but derivatives are
	// never excluded outright.
	scoreOriginalSource = 5

	// One point per full megabyte rewards likely-complete files without
	// letting size dominate kind.
	scoreBytesPerPoint = 1024 * 1024
	scoreSizeCap       = 15

	scorePlayableExtension = 5
)

// Broadly-playable container extensions earning the flat desirability bonus.
var playableExtensions = []string{"mp3", "mp4", "m4a", "m4v", "webm", "ogv", "ogg", "flac", "wav"}

// ScoredFile pairs a file with its derived score during selection.
type ScoredFile struct {
	File  FileDescriptor
	Score int
}

// Score computes the desirability of a single file. The heuristic
// deliberately ignores bitrate and quality metadata beyond raw size;
// downstream ordering depends on this exact ranking.
func Score(file FileDescriptor) int {
	score := 0

	switch Classify(file) {
	case KindVideo:
		score += scoreVideo
	case KindAudio:
		score += scoreAudio
	case KindText:
		score += scoreText
	case KindOther:
		score += scoreOther
	}

	if strings.EqualFold(file.Source, "original") {
		score += scoreOriginalSource
	}

	sizePoints := int(file.Size / scoreBytesPerPoint)
	if sizePoints > scoreSizeCap {
		sizePoints = scoreSizeCap
	}
	score += sizePoints

	name := strings.ToLower(file.Name)
	for _, ext := range playableExtensions {
		if strings.HasSuffix(name, "."+ext) {
			score += scorePlayableExtension
			break
		}
	}

	return score
}

// PickBestPlayableFile selects the single highest-scoring audio or video file.
// It returns nil when no file of either kind is present. Ties keep the file
// that appears first in the input list.
func PickBestPlayableFile(files []FileDescriptor) *FileDescriptor {
	var best *ScoredFile
	for i := range files {
		kind := Classify(files[i])
		if kind != KindAudio && kind != KindVideo {
			continue
		}

		scored := ScoredFile{File: files[i], Score: Score(files[i])}
		if best == nil || scored.Score > best.Score {
			copied := scored
			best = &copied
		}
	}

	if best == nil {
		return nil
	}
	file := best.File
	return &file
}

// KindPartition holds the four kind-partitioned views of one file list.
type KindPartition struct {
	Audio []FileDescriptor
	Video []FileDescriptor
	Text  []FileDescriptor
	Other []FileDescriptor
}

// SplitByKind partitions files by classifier output. Every input file lands in
// exactly one partition and each partition preserves the input's relative
// order.
func SplitByKind(files []FileDescriptor) KindPartition {
	var parts KindPartition
	for _, file := range files {
		switch Classify(file) {
		case KindAudio:
			parts.Audio = append(parts.Audio, file)
		case KindVideo:
			parts.Video = append(parts.Video, file)
		case KindText:
			parts.Text = append(parts.Text, file)
		default:
			parts.Other = append(parts.Other, file)
		}
	}
	return parts
}
