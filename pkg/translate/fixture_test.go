package translate

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/japaniel/lexilookup/pkg/vocab"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type head struct {
	word, culture string
	links         []vocab.Entry
}

func en(w string) vocab.Entry { return vocab.Entry{Word: w, Culture: "en-US"} }
func de(w string) vocab.Entry { return vocab.Entry{Word: w, Culture: "de-DE"} }

// sampleHeads mirrors the shape of the bundled translations.xml.
var sampleHeads = []head{
	{"success", "en-US", []vocab.Entry{de("Erfolg"), de("Gelingen"), de("Gedeihen")}},
	{"Erfolg", "de-DE", []vocab.Entry{
		en("success"), en("result"), en("achievement"), en("thrive"), en("flourishing"), en("successful outcome"),
	}},
	{"episode", "en-US", []vocab.Entry{de("Folge")}},
	{"sequence", "en-US", []vocab.Entry{de("Folge"), de("Reihenfolge")}},
	{"error", "en-US", []vocab.Entry{de("Fehler"), de("Irrtum")}},
}

func buildGraph(t *testing.T, heads []head) *vocab.Graph {
	t.Helper()
	g := vocab.NewGraph()
	for _, h := range heads {
		id := g.AddRoot(vocab.Entry{Word: h.word, Culture: h.culture})
		for _, l := range h.links {
			if _, err := g.AddLink(id, l); err != nil {
				t.Fatalf("AddLink(%s -> %s): %v", h.word, l.Word, err)
			}
		}
	}
	return g
}

func staticLoader(g *vocab.Graph) Loader {
	return LoaderFunc(func(ctx context.Context) (*vocab.Graph, error) { return g, nil })
}

func newReadyEngine(t *testing.T, heads []head) *Engine {
	t.Helper()
	e := NewEngine(staticLoader(buildGraph(t, heads)), newTestLogger())
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}
