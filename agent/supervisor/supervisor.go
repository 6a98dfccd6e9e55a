// Package supervisor orchestrates one chat turn: classify the question,
// fan out to the selected agents, synthesize the answer, and manage the
// short-lived cart-confirmation exchange.
package supervisor

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/zaplap/shopchat/agent/contract"
	conversationx "github.com/zaplap/shopchat/agent/conversation"
)

const (
	msgAllAgentsFailed = "Hệ thống đang gặp sự cố. Vui lòng thử lại sau ít phút."
	msgNoRelevantInfo  = "Xin lỗi, tôi không tìm thấy thông tin phù hợp với câu hỏi của bạn. Vui lòng thử lại với câu hỏi khác hoặc liên hệ với chúng tôi để được hỗ trợ."

	msgCartAdded     = "Đã thêm sản phẩm vào giỏ hàng thành công!"
	msgCartAddFailed = "Không thể thêm sản phẩm vào giỏ hàng. Vui lòng thử lại sau."
	msgCartCancelled = "Đã hủy thao tác thêm vào giỏ hàng. Bạn cần hỗ trợ gì thêm không?"
)

type Supervisor struct {
	router        *Router
	executor      *Executor
	synthesizer   *Synthesizer
	verifier      contractx.Verifier
	conversations *conversationx.Store
	cart          contractx.CartStore
}

func New(
	router *Router,
	executor *Executor,
	synthesizer *Synthesizer,
	verifier contractx.Verifier,
	conversations *conversationx.Store,
	cart contractx.CartStore,
) (*Supervisor, error) {
	if router == nil || executor == nil || synthesizer == nil {
		return nil, errors.New("router, executor and synthesizer are required")
	}
	if verifier == nil {
		return nil, errors.New("identity verifier is required")
	}
	if conversations == nil {
		conversations = conversationx.NewStore()
	}
	if cart == nil {
		return nil, errors.New("cart store is required")
	}
	return &Supervisor{
		router:        router,
		executor:      executor,
		synthesizer:   synthesizer,
		verifier:      verifier,
		conversations: conversations,
		cart:          cart,
	}, nil
}

// Process answers one user message. A pending confirmation short-circuits the
// router/agent flow entirely.
func (s *Supervisor) Process(ctx context.Context, question, token string) (contractx.Answer, error) {
	q := contractx.Query{Text: strings.TrimSpace(question)}
	if token != "" {
		identity, err := s.verifier.Verify(token)
		if err != nil {
			// An invalid credential degrades to an anonymous query.
			log.Warn().Err(err).Msg("credential rejected, treating query as anonymous")
		} else {
			q.Identity = &identity
		}
	}

	if q.Authenticated() {
		if pending, ok := s.conversations.Take(q.Identity.UserID); ok {
			return s.resolvePending(ctx, q, pending), nil
		}
	}

	decision := s.router.Classify(ctx, q.Text)
	results := s.executor.Run(ctx, q, decision)

	if len(results) == 0 {
		return contractx.Answer{Text: msgNoRelevantInfo}, nil
	}
	if allErrored(results) {
		// Never spend a synthesis call on an all-failure set.
		return contractx.Answer{Text: msgAllAgentsFailed}, nil
	}

	answer, err := s.synthesizer.Synthesize(ctx, q.Text, results)
	if err != nil {
		return contractx.Answer{}, err
	}

	if answer.Offer != nil && answer.Offer.AwaitConfirm && q.Authenticated() {
		s.conversations.SetPendingCart(q.Identity.UserID, answer.Offer.ProductID, answer.Offer.Name, 1)
	}
	return answer, nil
}

// resolvePending consumes the pending confirmation: an affirmative reply
// triggers exactly one cart-add, anything else cancels. Either way the state
// is already cleared.
func (s *Supervisor) resolvePending(ctx context.Context, q contractx.Query, pending conversationx.State) contractx.Answer {
	if pending.Action != conversationx.ActionAwaitCartConfirmation {
		return contractx.Answer{Text: msgCartCancelled}
	}
	if !conversationx.IsAffirmative(q.Text) {
		log.Info().Int64("user", q.Identity.UserID).Msg("cart confirmation declined")
		return contractx.Answer{Text: msgCartCancelled}
	}

	if err := s.cart.AddItem(ctx, q.Identity.UserID, pending.ProductID, pending.Quantity); err != nil {
		log.Error().Err(err).
			Int64("user", q.Identity.UserID).
			Int64("product", pending.ProductID).
			Msg("cart add failed")
		return contractx.Answer{Text: msgCartAddFailed}
	}
	log.Info().
		Int64("user", q.Identity.UserID).
		Int64("product", pending.ProductID).
		Msg("product added to cart")
	return contractx.Answer{Text: msgCartAdded + " (" + pending.ProductName + ")"}
}
