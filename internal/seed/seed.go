package seed

import (
	"fmt"
	"log"

	"weave/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumPosts       int
	NumCommunities int
	ShouldClean    bool
	// MaxDays bounds how far back generated content is dated.
	MaxDays int
}

// Seed populates the database with a connected social mesh: users, follow
// edges in every lifecycle state, posts with engagement, nested comment
// threads, and communities with memberships.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 50
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 200
	}
	if opts.NumCommunities <= 0 {
		opts.NumCommunities = 8
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clearing data: %w", err)
		}
	}

	f := NewFactory(db, opts.MaxDays)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("creating users: %w", err)
	}
	log.Printf("Seeded %d users", len(users))

	if err := createFollowMesh(f, users); err != nil {
		return fmt.Errorf("creating follow mesh: %w", err)
	}

	posts, err := createPosts(f, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("creating posts: %w", err)
	}
	log.Printf("Seeded %d posts", len(posts))

	if err := createEngagement(f, users, posts); err != nil {
		return fmt.Errorf("creating engagement: %w", err)
	}

	if err := createCommunities(f, users, opts.NumCommunities); err != nil {
		return fmt.Errorf("creating communities: %w", err)
	}

	log.Println("Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	// Child tables first so foreign keys are never dangling.
	for _, model := range []interface{}{
		&models.Notification{}, &models.Like{}, &models.Comment{},
		&models.Membership{}, &models.Community{}, &models.Post{},
		&models.Follow{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createFollowMesh wires users into a connected graph. Most edges are
// accepted; private targets keep a share of pending and rejected requests so
// the full lifecycle is represented.
func createFollowMesh(f *Factory, users []*models.User) error {
	n := len(users)
	if n < 2 {
		return nil
	}

	for i, user := range users {
		// A ring edge keeps the graph connected for distance queries.
		next := users[(i+1)%n]
		if _, err := f.CreateFollow(user, next, models.FollowStatusAccepted); err != nil {
			return err
		}

		// Random extra follows, two to six per user.
		extra := f.rand.Intn(5) + 2
		for j := 0; j < extra; j++ {
			target := users[f.rand.Intn(n)]
			if target.ID == user.ID || target.ID == next.ID {
				continue
			}

			status := models.FollowStatusAccepted
			if target.IsPrivate {
				switch f.rand.Intn(4) {
				case 0:
					status = models.FollowStatusPending
				case 1:
					status = models.FollowStatusRejected
				}
			}
			if _, err := f.CreateFollow(user, target, status); err != nil {
				// Duplicate pair from the random draw, skip it.
				continue
			}
		}
	}
	return nil
}

func createPosts(f *Factory, users []*models.User, count int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[f.rand.Intn(len(users))]
		posts = append(posts, f.BuildPost(author))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// createEngagement spreads likes and nested comments over the post corpus.
func createEngagement(f *Factory, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		likes := f.rand.Intn(8)
		for i := 0; i < likes; i++ {
			if err := f.CreateLike(users[f.rand.Intn(len(users))], post); err != nil {
				// Duplicate like from the random draw, skip it.
				continue
			}
		}

		comments := f.rand.Intn(5)
		var parent *models.Comment
		for i := 0; i < comments; i++ {
			author := users[f.rand.Intn(len(users))]
			// Half the comments reply to the previous one, building depth.
			var err error
			if parent != nil && f.rand.Intn(2) == 0 {
				parent, err = f.CreateComment(author, post, parent)
			} else {
				parent, err = f.CreateComment(author, post, nil)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func createCommunities(f *Factory, users []*models.User, count int) error {
	for i := 0; i < count; i++ {
		creator := users[f.rand.Intn(len(users))]
		community, err := f.CreateCommunity(creator)
		if err != nil {
			return err
		}

		members := f.rand.Intn(10) + 3
		for j := 0; j < members; j++ {
			user := users[f.rand.Intn(len(users))]
			if user.ID == creator.ID {
				continue
			}
			role := models.MembershipRoleMember
			if j == 0 {
				role = models.MembershipRoleModerator
			}
			if err := f.AddMember(community, user, role); err != nil {
				// Duplicate membership from the random draw, skip it.
				continue
			}
		}
	}
	return nil
}
