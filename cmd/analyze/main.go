// Command analyze runs a photo through the vision and recipe models and
// prints the results as JSON. It is a development tool; the server does the
// same through POST /api/analyze and POST /api/recipes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"nutrisnap-backend/config"
	"nutrisnap-backend/logger"
	"nutrisnap-backend/models"
	"nutrisnap-backend/server"
	"nutrisnap-backend/service"

	"go.uber.org/zap"
)

func main() {
	var (
		imagePath  string
		count      int
		diet       string
		cuisines   string
		calories   int
		skipRecipe bool
		timeout    time.Duration
	)
	flag.StringVar(&imagePath, "image", "", "Path to the photo to analyze (required)")
	flag.IntVar(&count, "count", 0, "Number of recipes to generate (default from RECIPES_DEFAULT_COUNT)")
	flag.StringVar(&diet, "diet", string(models.DietHealthy), "Diet: Healthy, Vegetarian or Non-vegetarian")
	flag.StringVar(&cuisines, "cuisines", "", "Comma-separated cuisines, e.g. Greek,Thai")
	flag.IntVar(&calories, "calories", 0, "Target calories per serving (0 disables the target)")
	flag.BoolVar(&skipRecipe, "detect-only", false, "Only run food detection")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	if imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Gemini.APIKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}

	zl := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console", Development: true})
	defer zl.Sync()

	prefs := models.DefaultPreferences()
	prefs.Diet = models.Diet(diet)
	if cuisines != "" {
		for _, c := range strings.Split(cuisines, ",") {
			if c = strings.TrimSpace(c); c != "" {
				prefs.Cuisines = append(prefs.Cuisines, c)
			}
		}
	}
	if calories > 0 {
		prefs.CalorieTarget = calories
		prefs.UseCalorieTarget = true
	}
	if err := prefs.Validate(); err != nil {
		log.Fatalf("Invalid preferences: %v", err)
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	generator := server.NewGenerator(cfg, zl)
	vision := service.NewVisionService(
		service.VisionWithGenerator(generator),
		service.VisionWithModel(cfg.Gemini.VisionModel),
		service.VisionWithLogger(zl),
	)

	detection, err := vision.AnalyzeImage(ctx, service.AnalyzeImageRequest{Image: image, APIKey: cfg.Gemini.APIKey})
	if err != nil {
		zl.Fatal("Vision analysis failed", zap.String("hint", service.FriendlyMessage(err)), zap.Error(err))
	}
	printJSON("detection", detection)

	if skipRecipe {
		return
	}
	if !detection.IsFood || len(detection.Items) == 0 {
		fmt.Fprintln(os.Stderr, "No food detected, skipping recipe generation")
		return
	}

	labels := make([]string, 0, len(detection.Items))
	for _, item := range detection.Items {
		labels = append(labels, item.Label())
	}

	recipes := service.NewRecipeService(
		service.RecipeWithGenerator(generator),
		service.RecipeWithModel(cfg.Gemini.RecipeModel),
		service.RecipeWithDefaultCount(cfg.Recipes.DefaultCount),
		service.RecipeWithMinResults(cfg.Recipes.MinResults),
		service.RecipeWithLogger(zl),
	)

	result, err := recipes.GenerateRecipes(ctx, service.GenerateRecipesRequest{
		Items:       labels,
		Preferences: prefs,
		Count:       count,
		APIKey:      cfg.Gemini.APIKey,
	})
	if err != nil {
		zl.Fatal("Recipe generation failed", zap.String("hint", service.FriendlyMessage(err)), zap.Error(err))
	}
	printJSON("recipes", result)
}

func printJSON(label string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode %s: %v", label, err)
	}
	fmt.Printf("=== %s ===\n%s\n", label, data)
}
