package internal

import (
	"net/http"

	"postpilot/internal/controllers"
	"postpilot/internal/providers"
	"postpilot/internal/structures"
)

func InitRoutes(pipelineController *controllers.PipelineController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/posts", http.HandlerFunc(pipelineController.CreatePost))
	routers.Post("/posts/resume", http.HandlerFunc(pipelineController.ResumePost))
	routers.Get("/posts/list", http.HandlerFunc(pipelineController.GetPosts))
	routers.Post("/personas", http.HandlerFunc(pipelineController.CreatePersona))
	routers.Post("/personas/resume", http.HandlerFunc(pipelineController.ResumePersona))
	routers.Get("/news", http.HandlerFunc(pipelineController.GetNews))
	routers.Get("/checkpoints", http.HandlerFunc(pipelineController.GetCheckpoints))
	routers.Post("/checkpoints/discard", http.HandlerFunc(pipelineController.DiscardCheckpoint))
	return routers
}
