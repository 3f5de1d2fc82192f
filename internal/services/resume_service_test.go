package services

import (
	"context"
	"testing"
	"time"

	"github.com/chainfolio/chainfolio/internal/models"
	"github.com/chainfolio/chainfolio/internal/utils"
)

func basicInput(title string) ResumeInput {
	return ResumeInput{
		Title: title,
		Basics: models.Basics{
			Name:  "John Smith",
			Email: "john@example.com",
			Phone: "(555) 123-4567",
		},
	}
}

func TestCreateDefaultUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := newFakeResumeRepo()
	svc := NewResumeService(repo, nil)

	inA := basicInput("Resume A")
	inA.IsDefault = true
	a, err := svc.Create(ctx, "u1", inA)
	if err != nil {
		t.Fatalf("create A: %v", err)
	}

	time.Sleep(time.Millisecond)

	inB := basicInput("Resume B")
	inB.IsDefault = true
	b, err := svc.Create(ctx, "u1", inB)
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	if n := repo.defaultCount("u1"); n != 1 {
		t.Fatalf("expected exactly 1 default, got %d", n)
	}

	def, err := svc.GetDefault(ctx, "u1")
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if def == nil || def.ID != b.ID {
		t.Fatalf("expected default to be B (%s), got %+v", b.ID.Hex(), def)
	}

	gotA, err := svc.Get(ctx, "u1", a.ID.Hex())
	if err != nil {
		t.Fatalf("get A: %v", err)
	}
	if gotA.IsDefault {
		t.Error("A should have lost its default flag")
	}
}

func TestGetDefaultFallback(t *testing.T) {
	ctx := context.Background()
	repo := newFakeResumeRepo()
	svc := NewResumeService(repo, nil)

	// owner with no records: nil, no error
	def, err := svc.GetDefault(ctx, "empty")
	if err != nil {
		t.Fatalf("get default for empty owner: %v", err)
	}
	if def != nil {
		t.Fatalf("expected nil default, got %+v", def)
	}

	// records but no explicit default: most recently updated wins
	first, err := svc.Create(ctx, "u1", basicInput("First"))
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	second, err := svc.Create(ctx, "u1", basicInput("Second"))
	if err != nil {
		t.Fatal(err)
	}

	def, err = svc.GetDefault(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if def == nil || def.ID != second.ID {
		t.Fatalf("expected latest record %s as fallback, got %+v", second.ID.Hex(), def)
	}

	// explicit default beats recency
	if _, err := svc.SetDefault(ctx, "u1", first.ID.Hex()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, err := svc.Update(ctx, "u1", second.ID.Hex(), basicInput("Second v2")); err != nil {
		t.Fatal(err)
	}

	def, err = svc.GetDefault(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if def == nil || def.ID != first.ID {
		t.Fatalf("expected explicit default %s, got %+v", first.ID.Hex(), def)
	}
}

func TestSetDefaultSequence(t *testing.T) {
	ctx := context.Background()
	repo := newFakeResumeRepo()
	svc := NewResumeService(repo, nil)

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		r, err := svc.Create(ctx, "u1", basicInput(title))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, r.ID.Hex())
	}

	for _, id := range ids {
		if _, err := svc.SetDefault(ctx, "u1", id); err != nil {
			t.Fatalf("set default %s: %v", id, err)
		}
		if n := repo.defaultCount("u1"); n != 1 {
			t.Fatalf("after set default %s: %d defaults", id, n)
		}
	}

	if _, err := svc.SetDefault(ctx, "u1", "b0b0b0b0b0b0b0b0b0b0b0b0"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("expected NotFound for unknown id, got %v", err)
	}
	// foreign owner must look identical to nonexistent
	if _, err := svc.SetDefault(ctx, "u2", ids[0]); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("expected NotFound for foreign record, got %v", err)
	}
}

func TestDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeResumeRepo()
	svc := NewResumeService(repo, nil)

	in := basicInput("Senior Engineer")
	in.IsDefault = true
	in.Labels = []string{"golang", "backend"}
	src, err := svc.Create(ctx, "u1", in)
	if err != nil {
		t.Fatal(err)
	}

	cp, err := svc.Duplicate(ctx, "u1", src.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}

	if cp.ID == src.ID {
		t.Error("copy must have a distinct id")
	}
	if cp.Title != "Senior Engineer (Copy)" {
		t.Errorf("title = %q", cp.Title)
	}
	if cp.IsDefault {
		t.Error("copy must never be default")
	}
	if cp.Basics.Name != src.Basics.Name || len(cp.Labels) != 2 {
		t.Error("copy lost source fields")
	}
	if n := repo.defaultCount("u1"); n != 1 {
		t.Errorf("duplicate disturbed the default invariant: %d defaults", n)
	}

	if _, err := svc.Duplicate(ctx, "u2", src.ID.Hex()); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("expected NotFound for foreign duplicate, got %v", err)
	}
}

func TestUpdateSection(t *testing.T) {
	ctx := context.Background()
	repo := newFakeResumeRepo()
	svc := NewResumeService(repo, nil)

	src, err := svc.Create(ctx, "u1", basicInput("Sections"))
	if err != nil {
		t.Fatal(err)
	}
	id := src.ID.Hex()

	skills := models.SkillSet{
		Languages: []models.Skill{{Name: "Go", Level: 5}},
	}
	out, err := svc.UpdateSection(ctx, "u1", id, "skills", skills)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Skills.Languages) != 1 || out.Skills.Languages[0].Name != "Go" {
		t.Errorf("skills not replaced: %+v", out.Skills)
	}
	if out.Basics.Name != "John Smith" {
		t.Error("other sections must be untouched")
	}

	if _, err := svc.UpdateSection(ctx, "u1", id, "is_default", true); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("expected InvalidArgument for non-section field, got %v", err)
	}

	bad := models.SkillSet{Languages: []models.Skill{{Name: "Go", Level: 9}}}
	if _, err := svc.UpdateSection(ctx, "u1", id, "skills", bad); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("expected InvalidArgument for level out of range, got %v", err)
	}
}

func TestDeleteAndOwnership(t *testing.T) {
	ctx := context.Background()
	repo := newFakeResumeRepo()
	svc := NewResumeService(repo, nil)

	src, err := svc.Create(ctx, "u1", basicInput("Mine"))
	if err != nil {
		t.Fatal(err)
	}
	id := src.ID.Hex()

	if _, err := svc.Get(ctx, "u2", id); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("foreign get: expected NotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "u2", id); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("foreign delete: expected NotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(ctx, "u1", id); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("second delete: expected NotFound, got %v", err)
	}
}

func TestGetDefaultCaching(t *testing.T) {
	ctx := context.Background()
	repo := newFakeResumeRepo()
	mc := newMemCache()
	svc := NewResumeService(repo, mc)

	in := basicInput("Cached")
	in.IsDefault = true
	a, err := svc.Create(ctx, "u1", in)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetDefault(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if mc.sets != 1 {
		t.Fatalf("expected a cache fill, sets=%d", mc.sets)
	}
	if _, err := svc.GetDefault(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if mc.hits != 1 {
		t.Fatalf("expected a cache hit, hits=%d", mc.hits)
	}

	// a write for the owner must drop the cached default
	time.Sleep(time.Millisecond)
	b, err := svc.Create(ctx, "u1", func() ResumeInput {
		in := basicInput("New default")
		in.IsDefault = true
		return in
	}())
	if err != nil {
		t.Fatal(err)
	}

	def, err := svc.GetDefault(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if def == nil || def.ID != b.ID {
		t.Fatalf("stale default after write: got %+v, want %s (old %s)", def, b.ID.Hex(), a.ID.Hex())
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewResumeService(newFakeResumeRepo(), nil)

	if _, err := svc.Create(ctx, "u1", ResumeInput{Title: "   "}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("blank title: expected InvalidArgument, got %v", err)
	}

	in := basicInput("Bad skills")
	in.Skills.Tools = []models.Skill{{Name: "docker", Level: -1}}
	if _, err := svc.Create(ctx, "u1", in); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("negative level: expected InvalidArgument, got %v", err)
	}
}
