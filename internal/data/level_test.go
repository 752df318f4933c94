package data

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLevels(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "levels.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleLevels = `
levels:
  - name: desert
    terrain:
      octaves: 4
      frequency: 0.004
      amplitude: 8.0
      persistence: 0.5
      lacunarity: 2.0
      resolution: 16
    objects:
      - name: rock
        pool: obstacles
        subtype: rock
        density: 6.0
        min_distance: 6.0
        min_scale: 0.8
        max_scale: 2.5
        random_rotation: true
        collidable: true
        parts: 1
      - name: coin
        pool: collectibles
        subtype: coin
        density: 10.0
        min_distance: 3.0
        min_scale: 1.0
        max_scale: 1.0
        score_value: 10
        parts: 1
      - name: coyote
        density: 0.5
        min_distance: 50.0
        collidable: true
    enemy_types:
      - coyote
  - name: forest
    objects:
      - name: tree
        pool: obstacles
        subtype: tree
        density: 10.0
        parts: 2
`

func TestLoadLevelTable(t *testing.T) {
	table, err := LoadLevelTable(writeLevels(t, sampleLevels))
	if err != nil {
		t.Fatalf("LoadLevelTable: %v", err)
	}
	if table.Count() != 2 {
		t.Fatalf("Count = %d, want 2", table.Count())
	}

	desert := table.Get("desert")
	if desert == nil {
		t.Fatal("desert level missing")
	}
	if desert.Terrain.Octaves != 4 || desert.Terrain.Frequency != 0.004 {
		t.Errorf("terrain params not parsed: %+v", desert.Terrain)
	}
	if len(desert.Objects) != 3 {
		t.Fatalf("desert has %d objects, want 3", len(desert.Objects))
	}

	rock := desert.Template("rock")
	if rock == nil {
		t.Fatal("rock template missing")
	}
	if rock.Pool != "obstacles" || rock.Subtype != "rock" || !rock.Collidable || rock.Parts != 1 {
		t.Errorf("rock template wrong: %+v", rock)
	}
	if rock.MinScale != 0.8 || rock.MaxScale != 2.5 || !rock.RandomRotation {
		t.Errorf("rock scale/rotation wrong: %+v", rock)
	}

	coin := desert.Template("coin")
	if coin == nil || coin.ScoreValue != 10 {
		t.Errorf("coin template wrong: %+v", coin)
	}

	if desert.Template("dragon") != nil {
		t.Error("unknown template should be nil")
	}
}

func TestLevelEnemyTypes(t *testing.T) {
	table, err := LoadLevelTable(writeLevels(t, sampleLevels))
	if err != nil {
		t.Fatal(err)
	}
	desert := table.Get("desert")
	if !desert.IsEnemyType("coyote") {
		t.Error("coyote should be an enemy type")
	}
	if desert.IsEnemyType("rock") {
		t.Error("rock should not be an enemy type")
	}
}

func TestLevelTableFirst(t *testing.T) {
	table, err := LoadLevelTable(writeLevels(t, sampleLevels))
	if err != nil {
		t.Fatal(err)
	}
	if first := table.First(); first == nil || first.Name != "desert" {
		t.Errorf("First = %v, want desert (file order)", first)
	}

	empty, err := LoadLevelTable(writeLevels(t, "levels: []\n"))
	if err != nil {
		t.Fatal(err)
	}
	if empty.First() != nil {
		t.Error("First on empty table should be nil")
	}
}

func TestLoadLevelTableRejectsDuplicates(t *testing.T) {
	dup := `
levels:
  - name: desert
  - name: desert
`
	if _, err := LoadLevelTable(writeLevels(t, dup)); err == nil {
		t.Error("duplicate level names should fail")
	}
}

func TestLoadLevelTableRejectsUnnamed(t *testing.T) {
	unnamed := `
levels:
  - terrain:
      octaves: 2
`
	if _, err := LoadLevelTable(writeLevels(t, unnamed)); err == nil {
		t.Error("unnamed level should fail")
	}
}

func TestLoadLevelTableMissingFile(t *testing.T) {
	if _, err := LoadLevelTable(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoadLevelTableBadYAML(t *testing.T) {
	if _, err := LoadLevelTable(writeLevels(t, "levels: [unclosed")); err == nil {
		t.Error("malformed yaml should fail")
	}
}
