package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/config"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/handlers"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/middlewares"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, cfg *config.Config) {
	auth := handlers.NewAuthHandler(cfg.JWTSecret)
	lvl := handlers.NewLevelHandler()
	mod := handlers.NewModuleHandler()
	std := handlers.NewStudentHandler()
	tch := handlers.NewTeacherHandler()
	enr := handlers.NewEnrollmentHandler()
	sess := handlers.NewSessionHandler()
	att := handlers.NewAttendanceHandler()
	just := handlers.NewJustificationHandler()
	notif := handlers.NewNotificationHandler()

	e.GET("/health", handlers.Health)
	e.POST("/auth/login", auth.Login)

	authMW := middlewares.RequireAuth(cfg.JWTSecret)

	// Any authenticated user
	me := e.Group("", authMW)
	me.GET("/me", auth.Me)
	me.GET("/levels", lvl.List)
	me.GET("/levels/:id/schedule", lvl.GetSchedule)
	me.GET("/modules", mod.List)
	me.GET("/notifications", notif.List)
	me.GET("/notifications/unread-count", notif.UnreadCount)
	me.POST("/notifications/:id/read", notif.MarkRead)
	me.POST("/notifications/read-all", notif.MarkAllRead)

	// Admin
	admin := e.Group("/admin", authMW, middlewares.RequireRole(models.RoleAdmin))
	admin.POST("/levels", lvl.Create)
	admin.PUT("/levels/:id", lvl.Update)
	admin.DELETE("/levels/:id", lvl.Delete)
	admin.PUT("/levels/:id/schedule", lvl.PutSchedule)

	admin.POST("/modules", mod.Create)
	admin.PUT("/modules/:id", mod.Update)
	admin.DELETE("/modules/:id", mod.Delete)
	admin.POST("/assignments", mod.Assign)
	admin.DELETE("/assignments/:id", mod.Unassign)

	admin.GET("/students", std.List)
	admin.POST("/students", std.Create)
	admin.PUT("/students/:id", std.Update)
	admin.DELETE("/students/:id", std.Delete)

	admin.GET("/teachers", tch.List)
	admin.POST("/teachers", tch.Create)
	admin.PUT("/teachers/:id", tch.Update)
	admin.DELETE("/teachers/:id", tch.Delete)

	admin.POST("/enrollments", enr.Enroll)
	admin.POST("/enrollments/bulk", enr.BulkEnroll)
	admin.DELETE("/enrollments/:id", enr.Unenroll)
	admin.POST("/enrollments/:id/exclude", enr.Exclude)
	admin.POST("/enrollments/:id/reinstate", enr.Reinstate)
	admin.GET("/modules/:id/enrollments", enr.ListByModule)
	admin.GET("/attendance/stats", att.Stats)

	// Teacher (admins may act as teachers for support)
	teacher := e.Group("/teacher", authMW, middlewares.RequireRole(models.RoleTeacher, models.RoleAdmin))
	teacher.GET("/modules", mod.ListMine)
	teacher.POST("/sessions", sess.Open)
	teacher.GET("/sessions", sess.ListMine)
	teacher.GET("/sessions/:id", sess.Detail)
	teacher.POST("/sessions/:id/close", sess.Close)
	teacher.PUT("/attendance/:id", att.Override)
	teacher.POST("/attendance/bulk", att.BulkOverride)
	teacher.GET("/attendance/stats", att.Stats)
	teacher.GET("/justifications", just.ListForTeacher)
	teacher.GET("/justifications/pending-count", just.PendingCount)
	teacher.POST("/justifications/:id/decide", just.Decide)
	teacher.POST("/justifications/:id/restore", just.Restore)

	// Student
	student := e.Group("/student", authMW, middlewares.RequireRole(models.RoleStudent))
	student.GET("/sessions/code/:code", sess.GetByCode)
	student.POST("/attendance/mark", att.Mark)
	student.GET("/attendance", att.MyHistory)
	student.GET("/enrollments", enr.ListMine)
	student.POST("/justifications", just.Submit)
	student.GET("/justifications", just.ListMine)
}
