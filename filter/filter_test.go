package filter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xavhermans/clashofclans/coc"
)

func testClan() coc.Clan {
	return coc.Clan{
		Tag:              "#2PPC8L2QP",
		Name:             "coconut",
		Type:             "inviteOnly",
		Description:      coc.Ptr("We love wars"),
		Location:         &coc.Location{ID: 32000087, Name: "France", IsCountry: true, CountryCode: coc.Ptr("FR")},
		ClanLevel:        12,
		ClanPoints:       35000,
		RequiredTrophies: 2200,
		WarFrequency:     "always",
		WarWinStreak:     3,
		WarWins:          240,
		WarLosses:        40,
		IsWarLogPublic:   true,
		WarLeague:        coc.WarLeague{ID: 48000015, Name: "Crystal League I"},
		Members:          48,
		Labels: []coc.Label{
			{ID: 56000000, Name: "Clan Wars"},
			{ID: 56000004, Name: "Donations"},
		},
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasLabel("Clan Wars")`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasLabel("unclosed`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `1 + 2`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `hasLabel("Clan Wars") and WarWins > 100 and icontains(Name, "coco")`,
		},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				var compErr *CompilationError
				if !errors.As(err, &compErr) {
					t.Errorf("expected CompilationError, got %T", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filter.Expression() != strings.TrimSpace(tt.expression) {
				t.Errorf("Expression() = %q", filter.Expression())
			}
		})
	}
}

func TestClanFilters(t *testing.T) {
	clan := testClan()

	tests := []struct {
		expression string
		want       bool
	}{
		{`hasLabel("clan wars")`, true},
		{`hasLabel("Trophy Pushing")`, false},
		{`WarWins > 200 && WarLosses < 50`, true},
		{`Members >= 50`, false},
		{`CountryCode == "FR" && Location == "France"`, true},
		{`WarLeague startsWith "Crystal"`, true},
		{`icontains(Description, "WARS")`, true},
		{`lower(Name) == "coconut" and IsWarLogPublic`, true},
		{`"Donations" in Labels`, true},
		{`Type == "open"`, false},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile: %v", err)
			}
			got, err := filter.Evaluate(ClanEnv(clan))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClanEnvWithoutLocation(t *testing.T) {
	clan := testClan()
	clan.Location = nil
	clan.Description = nil

	env := ClanEnv(clan)
	if env["Location"] != "" || env["CountryCode"] != "" || env["Description"] != "" {
		t.Errorf("expected empty strings for missing optional fields, got %v %v %v",
			env["Location"], env["CountryCode"], env["Description"])
	}
}

func TestMemberEnv(t *testing.T) {
	member := coc.ClanMember{
		Tag:               "#8YJ0PRQ0",
		Name:              "Vardamir",
		Role:              coc.RoleCoLeader,
		ExpLevel:          120,
		League:            coc.League{Name: "Titan League III"},
		Trophies:          4100,
		Donations:         300,
		DonationsReceived: 150,
	}

	filter, err := NewExprCompiler().Compile(`hasRole("coleader") && DonationRatio == 2.0 && League startsWith "Titan"`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}
	ok, err := filter.Evaluate(MemberEnv(member))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected member to match")
	}

	member.DonationsReceived = 0
	if ratio := MemberEnv(member)["DonationRatio"]; ratio != 300.0 {
		t.Errorf("DonationRatio with nothing received = %v, want 300", ratio)
	}
}

func TestWarLogEnv(t *testing.T) {
	entry := coc.WarLog{
		Result:   coc.Ptr(coc.WarResultWin),
		EndTime:  "20200918T060948.000Z",
		TeamSize: 15,
		Clan: coc.WarLogClan{
			Tag: "#2PPC8L2QP", Name: "coconut", Stars: 40,
			DestructionPercentage: 91.5, Attacks: coc.Ptr(28), ExpEarned: coc.Ptr(220),
		},
		Opponent: coc.WarLogClan{Tag: "#Q8VR0RU9", Name: "les loups", Stars: 35, DestructionPercentage: 80.2},
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{`Won && Stars > OpponentStars`, true},
		{`Destruction > 90.0`, true},
		{`daysSince(EndTime) > 365`, true},
		{`ExpEarned == 220 && Attacks == 28`, true},
		{`Opponent == "les loups" && OpponentTag == "#Q8VR0RU9"`, true},
		{`Result == "lose"`, false},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile: %v", err)
			}
			got, err := filter.Evaluate(WarLogEnv(entry))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("missing result", func(t *testing.T) {
		entry.Result = nil
		env := WarLogEnv(entry)
		if env["Result"] != "" || env["Won"] != false {
			t.Errorf("unexpected result fields: %v %v", env["Result"], env["Won"])
		}
	})
}

func TestWarMemberEnv(t *testing.T) {
	member := coc.CurrentWarMember{
		Tag:           "#8YJ0PRQ0",
		Name:          "Vardamir",
		TownhallLevel: 13,
		MapPosition:   1,
		Attacks: []coc.WarAttack{
			{Stars: 3, DestructionPercentage: 100},
			{Stars: 2, DestructionPercentage: 76},
		},
		OpponentAttacks:    1,
		BestOpponentAttack: &coc.WarAttack{Stars: 1},
	}

	env := WarMemberEnv(member)
	if env["Attacks"] != 2 || env["Stars"] != 5 || env["BestOpponentStars"] != 1 {
		t.Errorf("unexpected env: %v", env)
	}

	env = WarMemberEnv(coc.CurrentWarMember{Tag: "#P0LYJC8C"})
	if env["Attacks"] != 0 || env["BestOpponentStars"] != 0 {
		t.Errorf("unexpected env for idle member: %v", env)
	}
}

func TestLocationEnv(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`IsCountry && CountryCode == "FR"`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}

	france := coc.Location{ID: 32000087, Name: "France", IsCountry: true, CountryCode: coc.Ptr("FR")}
	europe := coc.Location{ID: 32000000, Name: "Europe"}

	if ok, _ := filter.Evaluate(LocationEnv(france)); !ok {
		t.Errorf("expected France to match")
	}
	if ok, _ := filter.Evaluate(LocationEnv(europe)); ok {
		t.Errorf("expected Europe not to match")
	}
}

func TestEvaluationError(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`Name > 3`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}

	_, err = filter.Evaluate(ClanEnv(testClan()))
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Item != "#2PPC8L2QP" {
		t.Errorf("Item = %q, want clan tag", evalErr.Item)
	}
	if evalErr.Unwrap() == nil {
		t.Errorf("expected wrapped expr error")
	}
}

func TestApply(t *testing.T) {
	clans := make([]coc.Clan, 1000)
	for i := range clans {
		clans[i] = testClan()
		clans[i].Tag = fmt.Sprintf("#TAG%d", i)
		clans[i].ClanLevel = i
	}

	filter, err := NewExprCompiler().Compile(`ClanLevel % 2 == 0`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}

	evaluator := NewEvaluator(WithWorkers(4), WithBatchSize(10))
	results, err := Apply(context.Background(), evaluator, filter, clans, ClanEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 500 {
		t.Fatalf("expected 500 results, got %d", len(results))
	}
	for i, clan := range results {
		if clan.ClanLevel != i*2 {
			t.Fatalf("result %d has level %d, order not preserved", i, clan.ClanLevel)
		}
	}
}

func TestApplyEdgeCases(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`Name > 3`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}
	evaluator := NewEvaluator(WithWorkers(2), WithBatchSize(5))

	t.Run("empty input", func(t *testing.T) {
		results, err := Apply(context.Background(), evaluator, filter, []coc.Clan{}, ClanEnv)
		if err != nil || len(results) != 0 {
			t.Errorf("expected empty result, got %v, %v", results, err)
		}
	})

	t.Run("evaluation error stops concurrent apply", func(t *testing.T) {
		clans := make([]coc.Clan, 50)
		for i := range clans {
			clans[i] = testClan()
		}
		_, err := Apply(context.Background(), evaluator, filter, clans, ClanEnv)
		var evalErr *EvaluationError
		if !errors.As(err, &evalErr) {
			t.Errorf("expected EvaluationError, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Apply(ctx, evaluator, filter, []coc.Clan{testClan()}, ClanEnv)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestManager(t *testing.T) {
	manager := NewManager()

	err := manager.RegisterPresets(map[string]string{
		"warclans": `hasLabel("Clan Wars") && IsWarLogPublic`,
		"french":   `CountryCode == "FR"`,
	})
	if err != nil {
		t.Fatalf("failed to register presets: %v", err)
	}

	if names := manager.ListPresets(); len(names) != 2 || names[0] != "french" || names[1] != "warclans" {
		t.Errorf("ListPresets() = %v", names)
	}

	if err := manager.RegisterPresets(map[string]string{"broken": `Name ==`}); err == nil {
		t.Errorf("expected error for invalid preset")
	}
	if _, ok := manager.Preset("broken"); ok {
		t.Errorf("invalid preset should not be registered")
	}

	t.Run("resolve nothing", func(t *testing.T) {
		f, err := manager.Resolve("", "")
		if err != nil || f != nil {
			t.Errorf("expected nil filter, got %v, %v", f, err)
		}
	})

	t.Run("resolve preset and where", func(t *testing.T) {
		f, err := manager.Resolve("warclans", "Members < 10")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Expression() != `(hasLabel("Clan Wars") && IsWarLogPublic) && (Members < 10)` {
			t.Errorf("unexpected combined expression %q", f.Expression())
		}

		clans := []coc.Clan{testClan()}
		results, err := Select(context.Background(), manager, f, clans, ClanEnv)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no match, got %d", len(results))
		}
	})

	t.Run("unknown preset", func(t *testing.T) {
		_, err := manager.Resolve("missing", "")
		if err == nil || !strings.Contains(err.Error(), "available: french, warclans") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("select without filter", func(t *testing.T) {
		clans := []coc.Clan{testClan(), testClan()}
		results, err := Select(context.Background(), manager, nil, clans, ClanEnv)
		if err != nil || len(results) != 2 {
			t.Errorf("expected items unchanged, got %d, %v", len(results), err)
		}
	})
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile(`WarWins > 100`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}
	second, err := compiler.Compile(`WarWins > 100`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}
	if first != second {
		t.Errorf("expected cached filter to be reused")
	}

	compiler.Compile(`WarWins > 200`)
	compiler.Compile(`WarWins > 300`)
	if compiler.Size() != 2 {
		t.Errorf("Size() = %d, want 2 after eviction", compiler.Size())
	}

	compiler.Clear()
	if compiler.Size() != 0 {
		t.Errorf("Size() = %d after Clear", compiler.Size())
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newLRUCache[string, int](2)
	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Get("a")
	cache.Put("c", 3)

	if _, ok := cache.Get("b"); ok {
		t.Errorf("expected b to be evicted")
	}
	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Errorf("expected a to survive, got %v %v", v, ok)
	}
}
