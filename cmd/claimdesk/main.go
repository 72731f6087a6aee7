package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"claimdesk/internal"
	"claimdesk/internal/config"
	"claimdesk/internal/engine"
	"claimdesk/internal/ingest"
	"claimdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "team:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "team name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--name is required"))
		}
		team, err := db.CreateTeam(*name)
		must(err)
		fmt.Printf("team created id=%d name=%s\n", team.ID, team.Name)
	case "team:list":
		teams, err := db.ListTeams()
		must(err)
		for _, t := range teams {
			fmt.Printf("%d\t%s\n", t.ID, t.Name)
		}
	case "team:delete":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int("id", 0, "team id")
		_ = fs.Parse(os.Args[2:])
		must(db.DeleteTeam(*id))
		fmt.Printf("team deleted id=%d\n", *id)
	case "category:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "category name")
		teamID := fs.Int("teamId", 0, "owning team id (0 = unassigned)")
		l1 := fs.Bool("l1", false, "include in L1 monitor report")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--name is required"))
		}
		var team *int
		if *teamID != 0 {
			team = teamID
		}
		category, err := db.CreateCategory(*name, team, *l1)
		must(err)
		fmt.Printf("category created id=%d name=%s\n", category.ID, category.Name)
	case "category:list":
		categories, err := db.ListCategories()
		must(err)
		for _, c := range categories {
			marker := ""
			if c.SendToL1Monitor {
				marker = "\t[L1 Monitor]"
			}
			fmt.Printf("%d\t%s\t%s%s\n", c.ID, c.Name, c.TeamName, marker)
		}
	case "category:assign-team":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int("id", 0, "category id")
		teamID := fs.Int("teamId", 0, "team id (0 = unassign)")
		_ = fs.Parse(os.Args[2:])
		var team *int
		if *teamID != 0 {
			team = teamID
		}
		must(db.UpdateCategoryTeam(*id, team))
		fmt.Printf("category %d reassigned\n", *id)
	case "category:delete":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int("id", 0, "category id")
		_ = fs.Parse(os.Args[2:])
		must(db.DeleteCategory(*id))
		fmt.Printf("category deleted id=%d\n", *id)
	case "config:create", "config:update":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int("id", 0, "config id (update only)")
		name := fs.String("name", "", "configuration name")
		mappingsPath := fs.String("mappings", "", "path to a JSON file of standard field -> report header")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" || strings.TrimSpace(*mappingsPath) == "" {
			must(fmt.Errorf("--name and --mappings are required"))
		}
		mappings, err := loadMappings(*mappingsPath)
		must(err)
		if cmd == "config:update" {
			if *id == 0 {
				must(fmt.Errorf("--id is required"))
			}
			must(db.UpdateConfig(*id, *name, mappings))
			fmt.Printf("config updated id=%d\n", *id)
			return
		}
		clientConfig, err := db.CreateConfig(*name, mappings)
		must(err)
		fmt.Printf("config created id=%d name=%s\n", clientConfig.ID, clientConfig.Name)
	case "config:list":
		configs, err := db.ListConfigs()
		must(err)
		for _, c := range configs {
			fmt.Printf("%d\t%s\t(%d fields mapped)\n", c.ID, c.Name, len(c.ColumnMappings))
		}
	case "config:delete":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int("id", 0, "config id")
		_ = fs.Parse(os.Args[2:])
		must(db.DeleteConfig(*id))
		fmt.Printf("config deleted id=%d\n", *id)
	case "assoc:get":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		configID := fs.Int("config", 0, "config id")
		_ = fs.Parse(os.Args[2:])
		teamIDs, err := db.GetClientTeamAssociations(*configID)
		must(err)
		for _, id := range teamIDs {
			fmt.Printf("%d\n", id)
		}
	case "assoc:save":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		configID := fs.Int("config", 0, "config id")
		teams := fs.String("teams", "", "comma-separated team ids")
		_ = fs.Parse(os.Args[2:])
		teamIDs, err := parseIDList(*teams)
		must(err)
		must(db.SaveClientTeamAssociations(*configID, teamIDs))
		fmt.Printf("associations saved configId=%d teams=%d\n", *configID, len(teamIDs))
	case "rules:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		configID := fs.Int("config", 0, "config id")
		kind := fs.String("kind", "edit", "edit|note")
		_ = fs.Parse(os.Args[2:])
		rules, err := db.GetRules(internal.RuleKind(*kind), *configID)
		must(err)
		for _, r := range rules {
			fmt.Printf("%s\t-> %s (%s)\n", r.Text, r.CategoryName, r.TeamName)
		}
	case "rules:delete":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		configID := fs.Int("config", 0, "config id")
		kind := fs.String("kind", "edit", "edit|note")
		text := fs.String("text", "", "rule text")
		_ = fs.Parse(os.Args[2:])
		if *text == "" {
			must(fmt.Errorf("--text is required"))
		}
		must(db.DeleteRule(internal.RuleKind(*kind), *configID, *text))
		fmt.Printf("rule deleted config=%d kind=%s\n", *configID, *kind)
	case "rules:save":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		configID := fs.Int("config", 0, "config id")
		input := fs.String("input", "", "filled assignment workbook (xlsx)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		blob, err := os.ReadFile(*input)
		must(err)
		batches, err := engine.ReadAssignmentsFromXLSX(blob)
		must(err)
		if len(batches.Edits) == 0 && len(batches.Notes) == 0 {
			must(fmt.Errorf("no rules in %s have an assigned category", *input))
		}
		if len(batches.Edits) > 0 {
			must(db.SaveRules(internal.RuleEdit, *configID, batches.Edits))
		}
		if len(batches.Notes) > 0 {
			must(db.SaveRules(internal.RuleNote, *configID, batches.Notes))
		}
		fmt.Printf("rules saved configId=%d edits=%d notes=%d\n", *configID, len(batches.Edits), len(batches.Notes))
	case "analyze":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		configID := fs.Int("config", 0, "config id")
		input := fs.String("input", "", "claims extract (xlsx|csv|html)")
		out := fs.String("out", "", "work queue output path (xlsx, optional)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		clientConfig, err := db.MustConfig(*configID)
		must(err)
		rules, err := db.GetRuleSet(clientConfig.ID)
		must(err)
		table, err := ingest.DecodeFile(*input)
		must(err)

		analysis := engine.Analyze(table.Rows, clientConfig.ColumnMappings, rules)
		printMetrics(analysis.Metrics)

		queue := engine.WorkQueue(analysis.Claims)
		fmt.Printf("actionable claims: %d\n", len(queue))
		for _, claim := range queue {
			fmt.Printf("%d\t%s\t%s\t%s\tage=%d\t$%.2f\t%s\n",
				claim.PriorityScore, claim.Category, claim.Team, claim.ClaimID, claim.Age, claim.NetPayment, claim.ProviderName)
		}

		if *out != "" {
			must(engine.ExportWorkQueueToXLSX(analysis, *out))
			fmt.Printf("work queue exported to %s\n", *out)
		}
	case "discover":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		configID := fs.Int("config", 0, "config id")
		input := fs.String("input", "", "claims extract (xlsx|csv|html)")
		out := fs.String("out", "", "assignment workbook output path (xlsx, optional)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		clientConfig, err := db.MustConfig(*configID)
		must(err)
		editRules, err := db.GetRules(internal.RuleEdit, clientConfig.ID)
		must(err)
		noteRules, err := db.GetRules(internal.RuleNote, clientConfig.ID)
		must(err)
		table, err := ingest.DecodeFile(*input)
		must(err)

		result := engine.Discover(table.Rows, clientConfig.ColumnMappings,
			engine.KnownRuleTexts(editRules), engine.KnownRuleTexts(noteRules))

		fmt.Printf("found %d new edits and %d new notes\n", len(result.Edits), len(result.Notes))
		for _, item := range result.Edits {
			fmt.Printf("edit\t%s\n", item.Text)
		}
		for _, item := range result.Notes {
			fmt.Printf("note\t%s\n", item.Text)
		}

		if *out != "" {
			must(engine.ExportDiscoveryToXLSX(result, *out))
			fmt.Printf("assignment workbook exported to %s\n", *out)
		}
	case "report-config:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "report name")
		payloadPath := fs.String("payload", "", "path to a JSON payload file")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" || strings.TrimSpace(*payloadPath) == "" {
			must(fmt.Errorf("--name and --payload are required"))
		}
		blob, err := os.ReadFile(*payloadPath)
		must(err)
		if !json.Valid(blob) {
			must(fmt.Errorf("payload is not valid JSON: %s", *payloadPath))
		}
		rc, err := db.CreateReportConfig(*name, string(blob))
		must(err)
		fmt.Printf("report config created id=%d name=%s\n", rc.ID, rc.Name)
	case "report-config:list":
		reportConfigs, err := db.ListReportConfigs()
		must(err)
		for _, rc := range reportConfigs {
			fmt.Printf("%d\t%s\n", rc.ID, rc.Name)
		}
	case "fields":
		for _, field := range engine.StandardFields {
			fmt.Println(field)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func loadMappings(path string) (map[string]string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mappings map[string]string
	if err := json.Unmarshal(blob, &mappings); err != nil {
		return nil, fmt.Errorf("invalid mappings file %s: %w", path, err)
	}
	known := make(map[string]struct{}, len(engine.StandardFields))
	for _, field := range engine.StandardFields {
		known[field] = struct{}{}
	}
	for field := range mappings {
		if _, ok := known[field]; !ok {
			return nil, fmt.Errorf("unknown standard field in mappings: %q", field)
		}
	}
	return mappings, nil
}

func parseIDList(input string) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	parts := strings.Split(input, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid id list entry: %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}

func printMetrics(metrics internal.Metrics) {
	fmt.Printf("total claims: %d\n", metrics.TotalClaims)
	fmt.Printf("total net payment: $%.2f\n", metrics.TotalNetPayment)
	statuses := make([]string, 0, len(metrics.ClaimsByStatus))
	for status := range metrics.ClaimsByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Printf("  %s: %d\n", status, metrics.ClaimsByStatus[status])
	}
}

func usage() {
	fmt.Println(`claimdesk <command> [flags]

Admin:
  team:add --name NAME                 team:list    team:delete --id N
  category:add --name NAME [--teamId N] [--l1]
  category:list   category:assign-team --id N --teamId N   category:delete --id N
  config:create --name NAME --mappings FILE.json
  config:update --id N --name NAME --mappings FILE.json
  config:list     config:delete --id N
  assoc:get --config N    assoc:save --config N --teams 1,2,3
  report-config:add --name NAME --payload FILE.json    report-config:list
  fields

Rules:
  rules:list --config N --kind edit|note
  rules:delete --config N --kind edit|note --text TEXT
  rules:save --config N --input FILLED.xlsx

Analysis:
  analyze --config N --input FILE [--out QUEUE.xlsx]
  discover --config N --input FILE [--out ASSIGN.xlsx]`)
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
