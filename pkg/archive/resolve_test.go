package archive

import (
	"context"
	"net/http"
	"testing"
)

// End-to-end resolve over a fake metadata endpoint: classifier, selector,
// track builder and assembler working together.
func TestResolve(t *testing.T) {
	body := `{
		"metadata": {
			"title": "Foo Show",
			"creator": "The Foos",
			"date": "1977-05-08",
			"language": "eng",
			"subject": ["live", "soundboard"],
			"collection": "etree",
			"licenseurl": "https://creativecommons.org/licenses/by-nc/4.0/"
		},
		"files": [
			{"name": "a.mp3", "format": "VBR MP3", "size": "1000000", "length": "2:03"},
			{"name": "b.mp4", "format": "MPEG4", "size": 2000000, "source": "original"}
		]
	}`

	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metadata/foo" {
			t.Errorf("unexpected request path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(body))
	}))

	res, err := client.Resolve(context.Background(), "foo", ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if res.Provider != Provider {
		t.Errorf("provider = %q", res.Provider)
	}
	if res.Identifier != "foo" {
		t.Errorf("identifier = %q", res.Identifier)
	}

	wantBest := server.URL + "/download/foo/b.mp4"
	if res.BestFileURL != wantBest {
		t.Errorf("best file URL = %q, want %q", res.BestFileURL, wantBest)
	}
	if res.BestFileKind != KindVideo {
		t.Errorf("best file kind = %q, want video", res.BestFileKind)
	}

	if len(res.AudioFiles) != 1 || res.AudioFiles[0].Name != "a.mp3" {
		t.Errorf("audio partition = %+v", res.AudioFiles)
	}
	if len(res.VideoFiles) != 1 || res.VideoFiles[0].Name != "b.mp4" {
		t.Errorf("video partition = %+v", res.VideoFiles)
	}

	if res.Info.TrackCount != 1 || len(res.Info.Tracks) != 1 {
		t.Fatalf("track count = %d, tracks = %d, want 1/1", res.Info.TrackCount, len(res.Info.Tracks))
	}
	track := res.Info.Tracks[0]
	if track.Index != 1 || track.Name != "a.mp3" || track.Seconds != 123 {
		t.Errorf("track = %+v", track)
	}
	if res.Info.TotalDuration != "2:03" {
		t.Errorf("total duration = %q", res.Info.TotalDuration)
	}

	if res.Info.Title != "Foo Show" || res.Info.Creator != "The Foos" {
		t.Errorf("item info = %+v", res.Info)
	}
	if len(res.Info.Topics) != 2 || res.Info.Topics[0] != "live" {
		t.Errorf("topics = %v", res.Info.Topics)
	}
	if len(res.Info.Collections) != 1 || res.Info.Collections[0] != "etree" {
		t.Errorf("collections = %v", res.Info.Collections)
	}

	wantEmbed := server.URL + "/embed/foo"
	if res.EmbedURL != wantEmbed {
		t.Errorf("embed URL = %q, want %q", res.EmbedURL, wantEmbed)
	}
}

func TestResolveEmbedStart(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"files": []}`))
	}))

	res, err := client.Resolve(context.Background(), "foo", ResolveOptions{StartSeconds: 93.7})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	wantEmbed := server.URL + "/embed/foo?start=93"
	if res.EmbedURL != wantEmbed {
		t.Errorf("embed URL = %q, want %q (start must be floored)", res.EmbedURL, wantEmbed)
	}
	if res.BestFileURL != "" || res.BestFileKind != "" {
		t.Errorf("best file must be absent when nothing qualifies: %q %q", res.BestFileURL, res.BestFileKind)
	}
}

func TestResolveFromURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metadata/some-item" {
			t.Errorf("unexpected request path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"files": []}`))
	}))

	res, err := client.Resolve(context.Background(), "https://archive.org/details/some-item", ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Identifier != "some-item" {
		t.Errorf("identifier = %q, want %q", res.Identifier, "some-item")
	}
}
