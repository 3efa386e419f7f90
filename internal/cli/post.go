package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yks-app/yks-go/internal/svc/apiclient"
	"github.com/yks-app/yks-go/internal/svc/uploadsvc"
)

//nolint:gochecknoglobals
var (
	postImage       string
	postTitle       string
	postDescription string
)

//nolint:gochecknoglobals,exhaustruct
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "List feed posts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		posts, release, err := app.Client.GetPosts(cmd.Context())
		if err != nil {
			return fmt.Errorf("get posts: %w", err)
		}
		defer release()

		if len(posts) == 0 {
			cmd.Println("No posts yet")

			return nil
		}

		for _, post := range posts {
			cmd.Printf("%s  %s\n", post.ID, post.Title)
		}

		return nil
	},
}

//nolint:gochecknoglobals,exhaustruct
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Show or create feed posts",
}

//nolint:gochecknoglobals,exhaustruct
var postShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, release, err := app.Client.GetPostByID(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get post: %w", err)
		}
		defer release()

		cmd.Printf("%s\n", post.Title)

		if post.Description != "" {
			cmd.Printf("  %s\n", post.Description)
		}

		if post.ImageURL != "" {
			cmd.Printf("  image: %s\n", post.ImageURL)
		}

		return nil
	},
}

//nolint:gochecknoglobals,exhaustruct
var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new post with an image",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, ok := restoreSession(cmd.Context())
		if !ok {
			return errNotSignedIn
		}

		// The image must be durable before the post references it.
		url, err := app.Uploads.UploadFile(ctx, postImage, uploadsvc.PrefixPosts)
		if err != nil {
			return err
		}

		resp, err := app.Client.CreatePost(ctx, apiclient.CreatePostRequest{
			ImageURL:    url,
			Title:       postTitle,
			Description: postDescription,
		})
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}

		cmd.Println(orDefault(resp.Message, "Post published"))

		return nil
	},
}

//nolint:gochecknoinits
func init() {
	postCmd.AddCommand(postShowCmd)
	postCmd.AddCommand(postCreateCmd)

	postCreateCmd.Flags().StringVar(&postImage, "image", "", "Path to a local image to upload")
	postCreateCmd.Flags().StringVar(&postTitle, "title", "", "Post title")
	postCreateCmd.Flags().StringVar(&postDescription, "description", "", "Post description")

	_ = postCreateCmd.MarkFlagRequired("image")
	_ = postCreateCmd.MarkFlagRequired("title")
}
