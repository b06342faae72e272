package main

// Write the preview of a sample resume for every template:
//   go run ./cmd/renderdemo -out ./out

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumepro/resume/model"
	"resumepro/resume/render"
	"resumepro/resume/templates"
)

func main() {
	outDir := flag.String("out", "./out", "output directory for generated HTML")
	templateID := flag.String("template", "", "render only this template id")
	flag.Parse()

	catalog := templates.Default()
	selected := catalog.All()
	if id := strings.TrimSpace(*templateID); id != "" {
		tpl, err := catalog.Get(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unknown template %q\n", id)
			os.Exit(1)
		}
		selected = []templates.Descriptor{tpl}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	doc := model.Normalize(sampleDocument())
	for i := range selected {
		tpl := selected[i]
		html, err := render.RenderHTML(render.BuildLayout(doc, &tpl))
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s failed: %v\n", tpl.ID, err)
			os.Exit(1)
		}
		if pos := strings.Index(string(html), "{{"); pos != -1 {
			fmt.Fprintf(os.Stderr, "render %s left unresolved tokens at byte %d\n", tpl.ID, pos)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, tpl.ID+".html")
		if err := os.WriteFile(path, html, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s\n", path)
	}

	artifact, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode sample: %v\n", err)
		os.Exit(1)
	}
	path := filepath.Join(*outDir, model.ArtifactName(doc))
	if err := os.WriteFile(path, artifact, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: wrote %s\n", path)
}

func sampleDocument() model.Document {
	return model.Document{
		PersonalInfo: model.PersonalInfo{
			FullName: "Jordan Lee",
			Email:    "jordan.lee@example.com",
			Phone:    "+1-555-0102",
			Location: "Austin, TX",
			LinkedIn: "https://www.linkedin.com/in/jordanlee",
			Website:  "https://github.com/jordanlee",
		},
		Summary: "Backend engineer with 8+ years of experience building resilient APIs and data services.",
		Experience: []model.Experience{
			{
				JobTitle:    "Senior Backend Engineer",
				Company:     "Acme Logistics",
				Location:    "Austin, TX",
				StartDate:   "2021-04",
				Current:     true,
				Description: "Designed a routing service that reduced shipment latency by 18%.",
			},
			{
				JobTitle:    "Backend Engineer",
				Company:     "Blue Harbor Systems",
				Location:    "Seattle, WA",
				StartDate:   "2018-01",
				EndDate:     "2021-03",
				Description: "Built event-driven ingestion pipelines for compliance data feeds.",
			},
		},
		Education: []model.Education{
			{Degree: "B.S. Computer Science", Institution: "University of Texas", GraduationDate: "2017"},
		},
		Skills: []string{"Go", "PostgreSQL", "AWS", "Docker", "Kubernetes"},
	}
}
