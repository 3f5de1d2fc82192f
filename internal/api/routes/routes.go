package routes

import (
	"github.com/chainfolio/chainfolio/internal/api/handlers"
	"github.com/chainfolio/chainfolio/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Resume       *handlers.ResumeHandler
	Verification *handlers.VerificationHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public search: no auth, is_public records only
	r.GET("/resumes/public/search", d.Resume.SearchPublic)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/resumes", d.Resume.List)
	auth.POST("/resumes", d.Resume.Create)
	auth.GET("/resumes/default", d.Resume.GetDefault)
	auth.GET("/resumes/:id", d.Resume.Get)
	auth.PUT("/resumes/:id", d.Resume.Update)
	auth.PATCH("/resumes/:id/section", d.Resume.UpdateSection)
	auth.POST("/resumes/:id/default", d.Resume.SetDefault)
	auth.POST("/resumes/:id/duplicate", d.Resume.Duplicate)
	auth.DELETE("/resumes/:id", d.Resume.Delete)

	auth.PUT("/resumes/:id/verification", d.Verification.Save)
	auth.DELETE("/resumes/:id/verification", d.Verification.Revoke)
	auth.POST("/resumes/:id/verification/request", d.Verification.Request)
	auth.GET("/resumes/:id/verification/matches", d.Verification.Matches)
	auth.GET("/resumes/:id/verification/audit", d.Verification.Audit)
}
