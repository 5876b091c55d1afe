package media_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/config"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/media"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/platform/platformtest"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/session"
)

const (
	shortcode = "ABCDE12"
	videoURL  = "https://scontent-lax3-1.cdninstagram.com/o1/v/t16/f2/m86/AQOvideo123.mp4?efg=abc&_nc_ht=scontent&oh=00_x&oe=6700"
	thumbURL  = "https://scontent-lax3-1.cdninstagram.com/v/t51.2885-15/123_n.jpg"
)

// page wraps body in a document padded past the default size floor.
func page(body string) []byte {
	filler := strings.Repeat("lorem ipsum dolor sit amet ", 250)
	return []byte("<!DOCTYPE html><html><head><title>Post</title></head><body>" +
		body + "<div>" + filler + "</div></body></html>")
}

func doc(t *testing.T, body string) *media.Document {
	t.Helper()
	d, err := media.ParseDocument(shortcode, page(body))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	return d
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingStrategy records how often the wrapped stage runs.
type countingStrategy struct {
	media.Strategy
	calls int
}

func (c *countingStrategy) Attempt(d *media.Document) (model.MediaRecord, bool) {
	c.calls++
	return c.Strategy.Attempt(d)
}

func instrumented() ([]media.Strategy, []*countingStrategy) {
	base := media.DefaultStrategies(media.DefaultRules())
	wrapped := make([]media.Strategy, 0, len(base))
	counters := make([]*countingStrategy, 0, len(base))
	for _, s := range base {
		c := &countingStrategy{Strategy: s}
		wrapped = append(wrapped, c)
		counters = append(counters, c)
	}
	return wrapped, counters
}

const sharedDataVideo = `<script type="text/javascript">window._sharedData = {"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{` +
	`"__typename":"GraphVideo","id":"3099","shortcode":"ABCDE12","is_video":true,` +
	`"video_versions":[{"url":"` + videoURL + `"}],"display_url":"` + thumbURL + `",` +
	`"owner":{"username":"author"},"taken_at_timestamp":1700000000,` +
	`"edge_media_preview_like":{"count":12},"edge_media_to_comment":{"count":3},` +
	`"edge_media_to_caption":{"edges":[{"node":{"text":"hello"}}]}}}}]}};</script>`

const thumbnailsOnly = `<script src="https://static.cdninstagram.com/rsrc.php/v3/yx/r/abc.js"></script>` +
	`<link rel="stylesheet" href="https://static.cdninstagram.com/rsrc.php/v3/style.css">` +
	`<img src="https://scontent-lax3-1.cdninstagram.com/v/t51.2885-15/12345_n.jpg?stp=dst-jpg_s150x150&amp;_nc_ht=x">` +
	`<script type="application/json">{"thumbnail_src":"https:\/\/scontent.cdninstagram.com\/v\/t51.2885-15\/preview_abc.jpg",` +
	`"profile":"https://scontent.cdninstagram.com/v/t51.2885-19/profile_pic.jpg"}</script>`

func TestResolveMarkupGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup []byte
	}{
		{name: "short markup", markup: []byte("<html><body>" + sharedDataVideo + "</body></html>")},
		{name: "login page", markup: page(`<div id="react-root"><form id="loginForm"></form></div>` + sharedDataVideo)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			strategies, counters := instrumented()
			r := media.NewResolver(nil, media.WithStrategies(strategies...), media.WithLogger(quietLogger()))

			res := r.ResolveMarkup(context.Background(), shortcode, tt.markup)
			if res.OK() {
				t.Fatalf("expected failure, got record %+v", res.Record)
			}
			if res.Failure.Kind != model.ErrorKindBlocked || res.Failure.Stage != media.StageGuard {
				t.Errorf("failure = %+v, expected blocked at guard", res.Failure)
			}
			for _, c := range counters {
				if c.calls != 0 {
					t.Errorf("stage %s ran %d times", c.Name(), c.calls)
				}
			}
		})
	}
}

func TestResolveMarkupChain(t *testing.T) {
	t.Parallel()

	t.Run("stage one wins and later stages never run", func(t *testing.T) {
		t.Parallel()

		strategies, counters := instrumented()
		r := media.NewResolver(nil, media.WithStrategies(strategies...), media.WithLogger(quietLogger()))

		res := r.ResolveMarkup(context.Background(), shortcode, page(sharedDataVideo))
		if !res.OK() {
			t.Fatalf("expected record, got failure %v", res.Failure)
		}
		if res.Stage != media.StageSharedData {
			t.Errorf("Stage = %q, expected %q", res.Stage, media.StageSharedData)
		}
		want := &model.MediaRecord{
			MediaID:      "3099",
			Shortcode:    shortcode,
			Type:         model.MediaTypeVideo,
			Caption:      "hello",
			AuthorHandle: "author",
			TakenAt:      time.Unix(1700000000, 0).UTC(),
			LikeCount:    12,
			CommentCount: 3,
			VideoURL:     videoURL,
			ThumbnailURL: thumbURL,
			IsVideo:      true,
		}
		if diff := cmp.Diff(want, res.Record); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
		if counters[0].calls != 1 {
			t.Errorf("stage 1 ran %d times", counters[0].calls)
		}
		for _, c := range counters[1:] {
			if c.calls != 0 {
				t.Errorf("stage %s ran %d times after a win", c.Name(), c.calls)
			}
		}
	})

	t.Run("thumbnails and assets only is exhausted", func(t *testing.T) {
		t.Parallel()

		strategies, counters := instrumented()
		r := media.NewResolver(nil, media.WithStrategies(strategies...), media.WithLogger(quietLogger()))

		res := r.ResolveMarkup(context.Background(), shortcode, page(thumbnailsOnly))
		if res.OK() {
			t.Fatalf("expected failure, got record %+v from %s", res.Record, res.Stage)
		}
		if res.Failure.Kind != model.ErrorKindExtractionExhausted {
			t.Errorf("Kind = %q, expected extraction-exhausted", res.Failure.Kind)
		}
		if res.Failure.Stage != media.StageEscapedSweep {
			t.Errorf("Stage = %q, expected the last stage", res.Failure.Stage)
		}
		for _, c := range counters {
			if c.calls != 1 {
				t.Errorf("stage %s ran %d times, expected 1", c.Name(), c.calls)
			}
		}
	})

	t.Run("image post succeeds without video url", func(t *testing.T) {
		t.Parallel()

		body := `<script>window._sharedData = {"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{` +
			`"__typename":"GraphImage","id":"1","shortcode":"ABCDE12","is_video":false,"display_url":"` + thumbURL + `"}}}]}};</script>`
		r := media.NewResolver(nil, media.WithLogger(quietLogger()))

		res := r.ResolveMarkup(context.Background(), shortcode, page(body))
		if !res.OK() {
			t.Fatalf("expected record, got %v", res.Failure)
		}
		if res.Record.IsVideo || res.Record.Type != model.MediaTypeImage || res.Record.VideoURL != "" {
			t.Errorf("unexpected record: %+v", res.Record)
		}
	})

	t.Run("video without url defers to a later sweep", func(t *testing.T) {
		t.Parallel()

		body := `<script>window.__additionalDataLoaded('/p/ABCDE12/',{"graphql":{"shortcode_media":{` +
			`"__typename":"GraphVideo","shortcode":"ABCDE12","is_video":true,"edge_media_to_caption":{"edges":[{"node":{"text":"cap"}}]}}}});</script>` +
			`<meta property="og:video" content="` + strings.ReplaceAll(videoURL, "&", "&amp;") + `">`
		r := media.NewResolver(nil, media.WithLogger(quietLogger()))

		res := r.ResolveMarkup(context.Background(), shortcode, page(body))
		if !res.OK() {
			t.Fatalf("expected record, got %v", res.Failure)
		}
		if res.Stage != media.StageFieldSweep {
			t.Errorf("Stage = %q, expected %q", res.Stage, media.StageFieldSweep)
		}
		if res.Record.VideoURL != videoURL {
			t.Errorf("VideoURL = %q", res.Record.VideoURL)
		}
		if res.Record.Caption != "" {
			t.Error("records from different stages must not be merged")
		}
	})

	t.Run("json scripts keep scanning past a video without url", func(t *testing.T) {
		t.Parallel()

		body := `<script type="application/json">{"items":[{"pk":"3099","code":"ABCDE12","media_type":2,` +
			`"caption":{"text":"hello"},"user":{"username":"author"}}]}</script>` +
			`<script type="application/json">{"x":{"y":{"code":"ABCDE12","video_versions":[{"url":"` + videoURL + `"}]}}}</script>`
		r := media.NewResolver(nil, media.WithLogger(quietLogger()))

		res := r.ResolveMarkup(context.Background(), shortcode, page(body))
		if !res.OK() {
			t.Fatalf("expected record, got %v", res.Failure)
		}
		if res.Stage != media.StageJSONScripts {
			t.Errorf("Stage = %q, expected %q", res.Stage, media.StageJSONScripts)
		}
		want := &model.MediaRecord{
			MediaID:      "3099",
			Shortcode:    shortcode,
			Type:         model.MediaTypeVideo,
			Caption:      "hello",
			AuthorHandle: "author",
			VideoURL:     videoURL,
			IsVideo:      true,
		}
		if diff := cmp.Diff(want, res.Record); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("video without any url is a valid terminal state", func(t *testing.T) {
		t.Parallel()

		body := `<script>window.__additionalDataLoaded('/p/ABCDE12/',{"graphql":{"shortcode_media":{` +
			`"__typename":"GraphVideo","shortcode":"ABCDE12","is_video":true,"video_url":"` + thumbURL + `"}}});</script>`
		r := media.NewResolver(nil, media.WithLogger(quietLogger()))

		res := r.ResolveMarkup(context.Background(), shortcode, page(body))
		if !res.OK() {
			t.Fatalf("expected held record, got %v", res.Failure)
		}
		if res.Stage != media.StageAdditionalData {
			t.Errorf("Stage = %q, expected %q", res.Stage, media.StageAdditionalData)
		}
		if !res.Record.IsVideo || res.Record.VideoURL != "" {
			t.Errorf("unexpected record: %+v", res.Record)
		}
	})

	t.Run("invalid shortcode", func(t *testing.T) {
		t.Parallel()

		r := media.NewResolver(nil)
		res := r.ResolveMarkup(context.Background(), "bad/code", page(sharedDataVideo))
		if res.OK() || res.Failure.Kind != model.ErrorKindInvalidInput {
			t.Errorf("expected invalid-input, got %+v", res)
		}
	})
}

func TestStrategies(t *testing.T) {
	t.Parallel()

	byName := make(map[string]media.Strategy)
	for _, s := range media.DefaultStrategies(media.DefaultRules()) {
		byName[s.Name()] = s
	}

	tests := []struct {
		name  string
		stage string
		body  string
		want  string
	}{
		{
			name:  "additional data",
			stage: media.StageAdditionalData,
			body: `<script>window.__additionalDataLoaded('/p/ABCDE12/',{"graphql":{"shortcode_media":{` +
				`"__typename":"GraphVideo","shortcode":"ABCDE12","is_video":true,"video_url":"` + videoURL + `"}}});</script>`,
			want: videoURL,
		},
		{
			name:  "json script known path",
			stage: media.StageJSONScripts,
			body:  `<script type="application/json">{"items":[{"code":"ABCDE12","media_type":2,"video_versions":[{"url":"` + videoURL + `"}]}]}</script>`,
			want:  videoURL,
		},
		{
			name:  "json script wrapped payload",
			stage: media.StageJSONScripts,
			body: `<script type="application/json">{"require":[["ScheduledServerJS","handle",null,[{"__bbox":{"result":{"data":` +
				`{"xdt_api__v1__media__shortcode__web_info":{"items":[{"code":"ABCDE12","media_type":2,"video_versions":[{"url":"` +
				videoURL + `"}]}]}}}}}]]]}</script>`,
			want: videoURL,
		},
		{
			name:  "json script string search",
			stage: media.StageJSONScripts,
			body:  `<script type="application/json">{"a":{"b":["` + thumbURL + `","` + videoURL + `"]}}</script>`,
			want:  videoURL,
		},
		{
			name:  "deep scan nested json string",
			stage: media.StageJSONDeepScan,
			body:  `<script type="application/json">{"payload":"{\"inner\":{\"src\":\"` + videoURL + `\"}}"}</script>`,
			want:  videoURL,
		},
		{
			name:  "deep scan url inside markup string",
			stage: media.StageJSONDeepScan,
			body:  `<script type="application/json">{"html":"<video src='` + videoURL + `'></video>"}</script>`,
			want:  videoURL,
		},
		{
			name:  "ld json video object",
			stage: media.StageLDJSON,
			body:  `<script type="application/ld+json">{"@type":"VideoObject","contentUrl":"` + videoURL + `"}</script>`,
			want:  videoURL,
		},
		{
			name:  "field sweep video_url",
			stage: media.StageFieldSweep,
			body:  `<div data-state='{"video_url":"` + videoURL + `"}'></div>`,
			want:  videoURL,
		},
		{
			name:  "field sweep og video",
			stage: media.StageFieldSweep,
			body:  `<meta property="og:video:secure_url" content="` + strings.ReplaceAll(videoURL, "&", "&amp;") + `">`,
			want:  videoURL,
		},
		{
			name:  "extension sweep",
			stage: media.StageExtensionSweep,
			body:  `<a href="https://scontent.cdninstagram.com/x/clip.mp4">clip</a>`,
			want:  "https://scontent.cdninstagram.com/x/clip.mp4",
		},
		{
			name:  "cdn host sweep picks the longest",
			stage: media.StageCDNHostSweep,
			body: `<p>https://scontent.cdninstagram.com/o1/v/t16/f2/short</p>` +
				`<p>https://scontent.cdninstagram.com/o1/v/t16/f2/much-longer-variant?x=1</p>`,
			want: "https://scontent.cdninstagram.com/o1/v/t16/f2/much-longer-variant?x=1",
		},
		{
			name:  "script sweep unescapes slashes",
			stage: media.StageScriptSweep,
			body:  `<script>var d = "https:\/\/scontent.cdninstagram.com\/o1\/v\/t16\/f2\/m86\/clip";</script>`,
			want:  "https://scontent.cdninstagram.com/o1/v/t16/f2/m86/clip",
		},
		{
			name:  "path signature with entities",
			stage: media.StagePathSignature,
			body:  `<p>https://video.fbcdn.net/v/t50.2886-16/clip?a=1&amp;b=2</p>`,
			want:  "https://video.fbcdn.net/v/t50.2886-16/clip?a=1&b=2",
		},
		{
			name:  "escaped sweep percent encoding",
			stage: media.StageEscapedSweep,
			body:  `<a href="/l/?u=https%3A%2F%2Fscontent.cdninstagram.com%2Fo1%2Fv%2Ft16%2Fclip.mp4">x</a>`,
			want:  "https://scontent.cdninstagram.com/o1/v/t16/clip.mp4",
		},
		{
			name:  "escaped sweep unicode slashes",
			stage: media.StageEscapedSweep,
			body:  `<p>https:\u002F\u002Fscontent.cdninstagram.com\u002Fo1\u002Fv\u002Ft16\u002Fclip.mp4</p>`,
			want:  "https://scontent.cdninstagram.com/o1/v/t16/clip.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, ok := byName[tt.stage]
			if !ok {
				t.Fatalf("no strategy named %q", tt.stage)
			}
			rec, ok := s.Attempt(doc(t, tt.body))
			if !ok {
				t.Fatal("expected the stage to find a record")
			}
			if rec.VideoURL != tt.want {
				t.Errorf("VideoURL = %q, expected %q", rec.VideoURL, tt.want)
			}
		})
	}

	t.Run("every stage declines on asset-only markup", func(t *testing.T) {
		t.Parallel()

		d := doc(t, thumbnailsOnly)
		for name, s := range byName {
			if rec, ok := s.Attempt(d); ok {
				t.Errorf("stage %s produced %+v", name, rec)
			}
		}
	})

	t.Run("chain order", func(t *testing.T) {
		t.Parallel()

		want := []string{
			media.StageSharedData, media.StageAdditionalData, media.StageJSONScripts, media.StageJSONDeepScan,
			media.StageLDJSON, media.StageFieldSweep, media.StageExtensionSweep, media.StageCDNHostSweep,
			media.StageScriptSweep, media.StagePathSignature, media.StageEscapedSweep,
		}
		var got []string
		for _, s := range media.DefaultStrategies(media.DefaultRules()) {
			got = append(got, s.Name())
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRulesValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		want      string
		ok        bool
	}{
		{name: "cdn mp4", candidate: videoURL, want: videoURL, ok: true},
		{name: "path signature without extension", candidate: "https://video.fbcdn.net/o1/v/t16/f2/m69/clip", want: "https://video.fbcdn.net/o1/v/t16/f2/m69/clip", ok: true},
		{name: "escaped slashes", candidate: `https:\/\/scontent.cdninstagram.com\/o1\/v\/t16\/a.mp4`, want: "https://scontent.cdninstagram.com/o1/v/t16/a.mp4", ok: true},
		{name: "foreign host", candidate: "https://example.com/clip.mp4"},
		{name: "lookalike suffix", candidate: "https://cdninstagram.com.evil.net/clip.mp4"},
		{name: "no label boundary", candidate: "https://evilcdninstagram.com/clip.mp4"},
		{name: "script asset", candidate: "https://static.cdninstagram.com/rsrc.php/v3/a.js"},
		{name: "stylesheet", candidate: "https://scontent.cdninstagram.com/o1/v/t16/a.css"},
		{name: "thumbnail image", candidate: thumbURL},
		{name: "small square marker", candidate: "https://scontent.cdninstagram.com/o1/v/t16/s150x150/clip.mp4"},
		{name: "not a video path", candidate: "https://scontent.cdninstagram.com/x/y"},
		{name: "ftp scheme", candidate: "ftp://scontent.cdninstagram.com/clip.mp4"},
		{name: "empty", candidate: ""},
	}

	rules := media.DefaultRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := rules.Validate(tt.candidate)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Validate(%q) = %q, %v; expected %q, %v", tt.candidate, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDefaultRulesHaveNoDuplicates(t *testing.T) {
	t.Parallel()

	rules := media.DefaultRules()
	lists := map[string][]string{
		"VideoHosts":          rules.VideoHosts,
		"VideoPathSignatures": rules.VideoPathSignatures,
		"VideoExtensions":     rules.VideoExtensions,
		"BlockMarkers":        rules.BlockMarkers,
		"BlockedExtensions":   rules.BlockedExtensions,
		"LoginMarkers":        rules.LoginMarkers,
	}
	for name, list := range lists {
		seen := make(map[string]bool, len(list))
		for _, v := range list {
			if seen[v] {
				t.Errorf("%s lists %q more than once", name, v)
			}
			seen[v] = true
		}
	}
}

func TestRulesFromConfig(t *testing.T) {
	t.Parallel()

	rules := media.RulesFromConfig(config.ResolverConfig{
		VideoHosts:   []string{"Video.Example.NET"},
		LoginMarkers: []string{"please-sign-in"},
	})

	if _, ok := rules.Validate("https://cdn.video.example.net/o1/v/t16/clip.mp4"); !ok {
		t.Error("expected configured host to be allowed")
	}
	if _, ok := rules.Validate(videoURL); ok {
		t.Error("expected default host to be replaced")
	}
	if !rules.IsLoginPage("<div>please-sign-in</div>") || rules.IsLoginPage(`<form id="loginForm">`) {
		t.Error("expected configured login markers to replace the defaults")
	}
	if len(rules.BlockMarkers) == 0 {
		t.Error("expected default block markers to be kept")
	}

	t.Run("blocked extensions", func(t *testing.T) {
		t.Parallel()

		rules := media.RulesFromConfig(config.ResolverConfig{BlockedExtensions: []string{".MOV"}})
		if _, ok := rules.Validate("https://scontent.cdninstagram.com/o1/v/t16/clip.mov"); ok {
			t.Error("expected configured extension to be blocked")
		}
		if _, ok := rules.Validate("https://scontent.cdninstagram.com/o1/v/t16/clip.jpg"); !ok {
			t.Error("expected default blocked extensions to be replaced")
		}
	})
}

func TestParseDocument(t *testing.T) {
	t.Parallel()

	d := doc(t, `<meta property="og:image" content="`+thumbURL+`"><meta name="description" content="d">`+
		`<script type="application/json" id="s1">{"a":1}</script><script src="/x.js"></script>`+
		`<script type="application/ld+json">{}</script>`)

	if d.Meta["og:image"] != thumbURL || d.Meta["description"] != "d" {
		t.Errorf("unexpected meta: %v", d.Meta)
	}
	if len(d.Scripts) != 3 {
		t.Fatalf("expected 3 scripts, got %d", len(d.Scripts))
	}
	if len(d.JSONScripts()) != 1 || d.JSONScripts()[0].ID != "s1" {
		t.Errorf("unexpected json scripts: %+v", d.JSONScripts())
	}
	if len(d.LDJSONScripts()) != 1 {
		t.Errorf("expected 1 ld+json script, got %d", len(d.LDJSONScripts()))
	}
	if d.Scripts[1].Src != "/x.js" {
		t.Errorf("Src = %q", d.Scripts[1].Src)
	}
}

func TestResolveByShortcode(t *testing.T) {
	t.Parallel()

	newResolver := func(srv *platformtest.Server) *media.Resolver {
		m := session.NewManager(srv.Options(), session.WithLogger(quietLogger()))
		return media.NewResolver(m, media.WithLogger(quietLogger()))
	}

	t.Run("fetches with the session", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.HandleFunc("/p/ABCDE12/", func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(model.CookieSessionID); err != nil {
				http.Error(w, "login", http.StatusForbidden)
				return
			}
			_, _ = w.Write(page(sharedDataVideo)) //nolint:errcheck // test
		})

		res := newResolver(srv).ResolveByShortcode(context.Background(), platformtest.Credential(), shortcode)
		if !res.OK() {
			t.Fatalf("expected record, got %v", res.Failure)
		}
		if res.Record.VideoURL != videoURL {
			t.Errorf("VideoURL = %q", res.Record.VideoURL)
		}
	})

	t.Run("falls back to a raw fetch", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		calls := 0
		var cookieHeader string
		srv.HandleFunc("/p/ABCDE12/", func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				http.Error(w, "flaky", http.StatusBadGateway)
				return
			}
			cookieHeader = r.Header.Get("Cookie")
			_, _ = w.Write(page(sharedDataVideo)) //nolint:errcheck // test
		})

		res := newResolver(srv).ResolveByShortcode(context.Background(), platformtest.Credential(), shortcode)
		if !res.OK() {
			t.Fatalf("expected record, got %v", res.Failure)
		}
		if calls != 2 {
			t.Errorf("expected 2 fetches, got %d", calls)
		}
		if cookieHeader != platformtest.Credential().CookieHeader() {
			t.Errorf("Cookie = %q", cookieHeader)
		}
	})

	t.Run("both fetches failing is classified", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/p/ABCDE12/", platformtest.JSON(http.StatusTooManyRequests, map[string]any{}))

		res := newResolver(srv).ResolveByShortcode(context.Background(), platformtest.Credential(), shortcode)
		if res.OK() || res.Failure.Kind != model.ErrorKindRateLimited || res.Failure.Stage != media.StageFetch {
			t.Errorf("expected rate-limited at fetch, got %+v", res.Failure)
		}
	})

	t.Run("login wall is blocked", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/p/ABCDE12/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(page(`<script>{"LoginAndSignupPage":true}</script>`)) //nolint:errcheck // test
		}))

		res := newResolver(srv).ResolveByShortcode(context.Background(), platformtest.Credential(), shortcode)
		if res.OK() || res.Failure.Kind != model.ErrorKindBlocked {
			t.Errorf("expected blocked, got %+v", res.Failure)
		}
	})

	t.Run("invalid shortcode makes no requests", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		res := newResolver(srv).ResolveByShortcode(context.Background(), platformtest.Credential(), "a/b")
		if res.OK() || res.Failure.Kind != model.ErrorKindInvalidInput {
			t.Errorf("expected invalid-input, got %+v", res.Failure)
		}
		if srv.TotalHits() != 0 {
			t.Errorf("expected no requests, got %d", srv.TotalHits())
		}
	})

	t.Run("session failure", func(t *testing.T) {
		t.Parallel()

		srv := platformtest.NewServer(t)
		srv.Handle("/accounts/current_user/", platformtest.Fail(http.StatusBadRequest, "checkpoint_required"))

		res := newResolver(srv).ResolveByShortcode(context.Background(), platformtest.Credential(), shortcode)
		if res.OK() || res.Failure.Kind != model.ErrorKindCheckpointRequired || res.Failure.Stage != media.StageSession {
			t.Errorf("expected checkpoint at session, got %+v", res.Failure)
		}
	})
}
