package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	agentsx "github.com/zaplap/shopchat/agent/agents"
	cachex "github.com/zaplap/shopchat/agent/cache"
	conversationx "github.com/zaplap/shopchat/agent/conversation"
	gatewayx "github.com/zaplap/shopchat/agent/gateway"
	llmx "github.com/zaplap/shopchat/agent/llm"
	promptx "github.com/zaplap/shopchat/agent/prompt"
	graphstorex "github.com/zaplap/shopchat/agent/store/graph"
	postgresx "github.com/zaplap/shopchat/agent/store/postgres"
	vectorx "github.com/zaplap/shopchat/agent/store/vector"
	supervisorx "github.com/zaplap/shopchat/agent/supervisor"
	authx "github.com/zaplap/shopchat/pkg/auth"
	configx "github.com/zaplap/shopchat/pkg/config"
	_ "github.com/zaplap/shopchat/pkg/logger/autoload"
	openrouterx "github.com/zaplap/shopchat/pkg/openrouter"
	tavilyx "github.com/zaplap/shopchat/pkg/tavily"
	serverx "github.com/zaplap/shopchat/server"
)

type AppConfig struct {
	// Cheap model for classification and synthesis. Empty falls back to the
	// provider's default chat model.
	RouterModel string `envconfig:"ROUTER_MODEL" split_words:"true"`
	SynthModel  string `envconfig:"SYNTH_MODEL" split_words:"true"`
	CypherModel string `envconfig:"CYPHER_MODEL" split_words:"true"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		panic("failed to initialize openrouter client")
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	provider, err := llmx.New(openRouterClient, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize model provider")
	}

	gatewayCfg := configx.MustNew[gatewayx.Config]("GATEWAY")
	gateway := gatewayx.New(provider, *gatewayCfg)

	cacheCfg := configx.MustNew[cachex.Config]("CACHE")
	resultCache := cachex.New(*cacheCfg)

	postgresCfg := configx.MustNew[postgresx.Config]("POSTGRES")
	db := postgresx.NewDB(*postgresCfg)
	defer db.Close()
	stores := postgresx.NewStores(db)

	graphCfg := configx.MustNew[graphstorex.Config]("NEO4J")
	graphStore, err := graphstorex.New(*graphCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize graph store")
	}
	defer graphStore.Close(context.Background())

	vectorCfg := configx.MustNew[vectorx.Config]("QDRANT")
	vectorIndex := vectorx.MustNew(*vectorCfg)

	tavilyCfg := configx.MustNew[tavilyx.Config]("TAVILY")
	tavilyClient := tavilyx.MustNew(*tavilyCfg)

	authCfg := configx.MustNew[authx.Config]("AUTH")
	verifier := authx.MustNew(*authCfg)

	prompts := promptx.LoadPromptSet()

	executor := supervisorx.NewExecutor(
		agentsx.NewOrderHistory(stores),
		agentsx.NewPromotion(stores),
		agentsx.NewProductCatalog(stores),
		agentsx.NewGraphQuery(gateway, graphStore, prompts.Cypher, appCfg.CypherModel),
		agentsx.NewWebSearch(tavilyClient),
		agentsx.NewKnowledgeBase(gateway, vectorIndex, resultCache),
	)
	router := supervisorx.NewRouter(gateway, prompts.Router, appCfg.RouterModel)
	synthesizer := supervisorx.NewSynthesizer(gateway, prompts.Synthesizer, appCfg.SynthModel)

	sup, err := supervisorx.New(router, executor, synthesizer, verifier, conversationx.NewStore(), stores)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize supervisor")
	}

	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	srv := serverx.New(*serverCfg, sup)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server stopped")
}
