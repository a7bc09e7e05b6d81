package repos

import (
	"github.com/yungbote/shortcraft-backend/internal/data/repos/artifacts"
	"github.com/yungbote/shortcraft-backend/internal/data/repos/projects"
	"github.com/yungbote/shortcraft-backend/internal/data/repos/user"
)

type UserRepo = user.UserRepo
type ProjectRepo = projects.ProjectRepo
type ArtifactRepo = artifacts.ArtifactRepo

var (
	NewUserRepo     = user.NewUserRepo
	NewProjectRepo  = projects.NewProjectRepo
	NewArtifactRepo = artifacts.NewArtifactRepo
)
