// demo client: syncs a thread from a running comment service and prints it
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ds124wfegd/WB_L3/6/config"
	"github.com/ds124wfegd/WB_L3/6/internal/client"
	"github.com/ds124wfegd/WB_L3/6/internal/engine"
	"github.com/ds124wfegd/WB_L3/6/internal/entity"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	remote := client.NewClient(cfg.Client.BaseURL, cfg.Client.ViewerID, cfg.Client.Timeout)
	eng := engine.NewEngine(remote, cfg.Client.ThreadID, cfg.App.PageSize)

	ctx := context.Background()

	if err := eng.Refresh(ctx); err != nil {
		logrus.Fatalf("Cannot load thread. Error: {%s}", err.Error())
	}

	if eng.TotalCount() == 0 {
		root, err := eng.Add(ctx, entity.CreateCommentRequest{
			Author:  cfg.Client.ViewerID,
			Content: "first!",
		})
		if err != nil {
			logrus.Fatalf("Cannot add comment. Error: {%s}", err.Error())
		}

		if _, err := eng.Reply(ctx, root.ID, entity.CreateCommentRequest{
			Author:  cfg.Client.ViewerID,
			Content: "replying to myself",
		}); err != nil {
			logrus.Fatalf("Cannot reply. Error: {%s}", err.Error())
		}

		if err := eng.ToggleLike(ctx, root.ID); err != nil {
			logrus.Errorf("Cannot like comment. Error: {%s}", err.Error())
		}
	}

	for eng.HasMore() {
		if err := eng.LoadMore(ctx); err != nil {
			logrus.Fatalf("Cannot load more. Error: {%s}", err.Error())
		}
	}

	fmt.Printf("thread %q: %d comments, sort=%s\n",
		cfg.Client.ThreadID, eng.TotalCount(), eng.SortPolicy())
	printForest(eng.Tree())
}

func printForest(forest []entity.Comment) {
	for _, node := range forest {
		liked := ""
		if node.IsLiked {
			liked = " <3"
		}
		fmt.Printf("%s- [%s] %s (likes: %d%s)\n",
			strings.Repeat("  ", node.Depth), node.Author, node.Content, node.LikesCount, liked)
		printForest(node.Children)
	}
}
