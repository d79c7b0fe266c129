package services_test

import (
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitzty/internal/models"
	"fitzty/internal/services"
	"fitzty/pkg/apperr"
	"fitzty/pkg/llm"
	"fitzty/pkg/rabbitmq"
)

const generated = "```json\n" + `[
  {"type": "style", "title": "Go monochrome", "description": "All black", "confidence": 1.7, "tags": ["monochrome"], "reasoning": "You like dark fits"},
  {"type": "Outfit", "title": "Denim on denim", "description": "Canadian tuxedo", "confidence": -0.2, "reasoning": "Lots of denim saves"},
  {"type": "podcast", "title": "Listen to this", "confidence": 0.5},
  {"type": "item", "title": "   ", "confidence": 0.9}
]` + "\n```"

func TestGenerate_PersistsParsedRecommendations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "stylist")
	e.post(t, models.Post{UserID: u.ID, Content: "fit", Tags: []string{"denim", "street"}, Style: "urban", IsPublic: true})

	client := &fakeLLM{recommend: answer(generated), signature: answer("  Denim✦ Urban Street ✦Nike  ")}
	res, err := e.recommender(client).Generate(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, "Denim ✦ Urban Street ✦ Nike", res.StyleDNA)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, models.RecommendationStyle, res.Recommendations[0].Type)
	assert.Equal(t, 1.0, res.Recommendations[0].Score)
	assert.Equal(t, models.RecommendationOutfit, res.Recommendations[1].Type)
	assert.Equal(t, 0.0, res.Recommendations[1].Score)

	var content models.RecommendationContent
	require.NoError(t, json.Unmarshal(res.Recommendations[0].Content, &content))
	assert.Equal(t, "Go monochrome", content.Title)
	assert.Equal(t, []string{"monochrome"}, content.Tags)

	stored, err := e.recs.ListByUser(ctx, u.ID, "", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	for _, r := range stored {
		assert.NotEmpty(t, r.ID)
		assert.False(t, r.IsRead)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}

	user, err := e.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Denim ✦ Urban Street ✦ Nike", user.StyleSignature)
	assert.Contains(t, e.events.Keys(), rabbitmq.RoutingRecommendationsGenerated)

	require.Len(t, client.calls, 2)
	for _, call := range client.calls {
		assert.Contains(t, call.User, "denim")
		switch call.MaxTokens {
		case 1000:
			assert.Equal(t, 0.7, call.Temperature)
		case 100:
			assert.Equal(t, 0.5, call.Temperature)
		default:
			t.Errorf("unexpected max tokens %d", call.MaxTokens)
		}
	}
}

func TestGenerate_FallsBackWhenModelFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "unlucky")

	client := &fakeLLM{recommend: fail(errors.New("boom")), signature: fail(&llm.HTTPError{StatusCode: 500})}
	res, err := e.recommender(client).Generate(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, &services.GenerateResult{
		Recommendations: []models.Recommendation{},
		StyleDNA:        services.DefaultStyleSignature,
	}, res)

	stored, err := e.recs.ListByUser(ctx, u.ID, "", 10)
	require.NoError(t, err)
	assert.Empty(t, stored)

	user, err := e.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, user.StyleSignature, "the default is returned but not stored")
}

func TestGenerate_FallbackKeepsStoredSignature(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "returning")

	good := &fakeLLM{recommend: answer("[]"), signature: answer("Y2K ✦ Monochrome ✦ Nike")}
	_, err := e.recommender(good).Generate(ctx, u.ID)
	require.NoError(t, err)

	bad := &fakeLLM{recommend: fail(errors.New("boom")), signature: answer("Minimal ✦ Chic")}
	res, err := e.recommender(bad).Generate(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, services.DefaultStyleSignature, res.StyleDNA)

	user, err := e.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Y2K ✦ Monochrome ✦ Nike", user.StyleSignature)
}

func TestGenerate_NonJSONOnlyAffectsThatPart(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "chatty")

	client := &fakeLLM{
		recommend: answer("Sure! Here are some ideas: wear more denim."),
		signature: answer("Y2K ✦ Monochrome ✦ Urban Street ✦ Nike ✦ Oversized"),
	}
	res, err := e.recommender(client).Generate(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, "Y2K ✦ Monochrome ✦ Urban Street ✦ Nike ✦ Oversized", res.StyleDNA)
}

func TestGenerate_BadSignatureUsesDefault(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "terse")

	client := &fakeLLM{recommend: answer("[]"), signature: answer("Minimal ✦ Chic")}
	res, err := e.recommender(client).Generate(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, services.DefaultStyleSignature, res.StyleDNA)
}

func TestGenerate_DisabledClient(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "offline")

	res, err := e.recommender(llm.Disabled{}).Generate(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, services.DefaultStyleSignature, res.StyleDNA)
}

func TestGenerate_Validation(t *testing.T) {
	e := newEnv(t)
	svc := e.recommender(&fakeLLM{recommend: answer("[]"), signature: answer("A ✦ B ✦ C")})

	_, err := svc.Generate(context.Background(), " ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Generate(context.Background(), "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRecommendations_ListAndMarkRead(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "reader")
	svc := e.recommender(&fakeLLM{recommend: answer(generated), signature: answer("A ✦ B ✦ C")})

	_, err := svc.Generate(ctx, u.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	outfits, err := svc.List(ctx, u.ID, "outfit")
	require.NoError(t, err)
	require.Len(t, outfits, 1)

	_, err = svc.List(ctx, u.ID, "podcast")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.MarkRead(ctx, outfits[0].ID, u.ID))
	outfits, err = svc.List(ctx, u.ID, "outfit")
	require.NoError(t, err)
	assert.True(t, outfits[0].IsRead)

	err = svc.MarkRead(ctx, outfits[0].ID, "someone-else")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestParseRecommendations(t *testing.T) {
	assert.Nil(t, services.ParseRecommendations(`{"type":"style"}`))
	assert.Nil(t, services.ParseRecommendations("not json"))
	assert.Nil(t, services.ParseRecommendations("[{broken"))
	assert.Empty(t, services.ParseRecommendations("[]"))

	drafts := services.ParseRecommendations(generated)
	require.Len(t, drafts, 2)
	assert.Equal(t, 1.0, drafts[0].Confidence)
	assert.Equal(t, 0.0, drafts[1].Confidence)
	assert.Equal(t, []string{}, drafts[1].Tags)
}

func TestParseStyleSignature(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"Y2K ✦ Monochrome ✦ Urban", "Y2K ✦ Monochrome ✦ Urban", true},
		{`"Boho✦Vintage✦Earthy✦Linen"`, "Boho ✦ Vintage ✦ Earthy ✦ Linen", true},
		{"```\nA ✦ B ✦ C\n```", "A ✦ B ✦ C", true},
		{"A ✦ B", "", false},
		{"A ✦ B ✦ C ✦ D ✦ E ✦ F", "", false},
		{"A ✦  ✦ C", "", false},
		{"", "", false},
		{"Here is your DNA:\nA ✦ B ✦ C", "", false},
	}
	for _, tc := range cases {
		got, ok := services.ParseStyleSignature(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}
